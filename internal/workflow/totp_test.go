package workflow

import (
	"testing"
	"time"
)

// Base32 of the RFC 6238 SHA-1 test key "12345678901234567890".
const totpTestSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestTOTPCodeReferenceVectors(t *testing.T) {
	cases := []struct {
		unix int64
		want string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"},
		{1234567890, "005924"},
	}
	for _, tc := range cases {
		code, err := TOTPCode(totpTestSecret, time.Unix(tc.unix, 0))
		if err != nil {
			t.Fatalf("TOTPCode at %d: %v", tc.unix, err)
		}
		if code != tc.want {
			t.Errorf("code at %d = %q, want %q", tc.unix, code, tc.want)
		}
	}
}

func TestTOTPCodeCleansSecret(t *testing.T) {
	messy := "gezd gnbv gy3t qojq gezd gnbv gy3t qojq"
	code, err := TOTPCode(messy, time.Unix(59, 0))
	if err != nil {
		t.Fatalf("TOTPCode: %v", err)
	}
	if code != "287082" {
		t.Errorf("code = %q, want 287082", code)
	}
}

func TestTOTPCodeRejectsBadSecret(t *testing.T) {
	if _, err := TOTPCode("", time.Now()); err == nil {
		t.Error("empty secret accepted")
	}
	if _, err := TOTPCode("not!base32", time.Now()); err == nil {
		t.Error("invalid base32 accepted")
	}
}
