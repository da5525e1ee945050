package ffmpeg

import "testing"

func TestLookupPrefersEnv(t *testing.T) {
	t.Setenv("BILISUB_TEST_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")

	if got := lookup("BILISUB_TEST_FFMPEG", "ffmpeg"); got != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("expected env path, got %q", got)
	}
}

func TestLookupMissingBinary(t *testing.T) {
	t.Setenv("BILISUB_TEST_MISSING", "")

	if got := lookup("BILISUB_TEST_MISSING", "bilisub-no-such-binary"); got != "" {
		t.Errorf("expected empty path, got %q", got)
	}
}
