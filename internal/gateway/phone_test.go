package gateway

import "testing"

func TestFormatPhone(t *testing.T) {
	const (
		testKey = "CHAPUBK_TEST-abc123"
		liveKey = "CHAPUBK-abc123"
	)

	testCases := []struct {
		name  string
		phone string
		key   string
		want  string
	}{
		{"bare subscriber test mode", "911223344", testKey, "0911223344"},
		{"bare subscriber live mode", "911223344", liveKey, "+251911223344"},
		{"local form test mode", "0911223344", testKey, "0911223344"},
		{"local form live mode", "0911223344", liveKey, "+251911223344"},
		{"international form test mode", "+251911223344", testKey, "0911223344"},
		{"international form live mode", "+251911223344", liveKey, "+251911223344"},
		{"country code without plus", "251911223344", liveKey, "+251911223344"},
		{"spaces stripped", " 0911 223 344 ", liveKey, "+251911223344"},
		{"seven prefix subscriber", "711223344", testKey, "0711223344"},
		{"unparseable passes through", "12345", liveKey, "12345"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatPhone(tc.phone, tc.key)
			if got != tc.want {
				t.Errorf("FormatPhone(%q, %q) = %q, want %q", tc.phone, tc.key, got, tc.want)
			}
		})
	}
}

func TestIsTestMode(t *testing.T) {
	if !IsTestMode("CHAPUBK_TEST-abc") {
		t.Error("expected sandbox key to be test mode")
	}
	if IsTestMode("CHAPUBK-abc") {
		t.Error("expected live key to not be test mode")
	}
}

func TestNormalizeStatus(t *testing.T) {
	testCases := []struct {
		wire string
		want string
	}{
		{"success", "SUCCESSFUL"},
		{"successful", "SUCCESSFUL"},
		{"failed", "FAILED"},
		{"error", "FAILED"},
		{"cancelled", "CANCELLED"},
		{"canceled", "CANCELLED"},
		{"processing", "PROCESSING"},
		{"", "PENDING"},
		{"created", "PENDING"},
	}

	for _, tc := range testCases {
		if got := normalizeStatus(tc.wire); string(got) != tc.want {
			t.Errorf("normalizeStatus(%q) = %s, want %s", tc.wire, got, tc.want)
		}
	}
}
