package hostvm

import "testing"

func TestScriptError_ExitCode(t *testing.T) {
	var nilErr *ScriptError
	if nilErr.ExitCode() != 0 {
		t.Fatalf("expected a nil *ScriptError to exit 0")
	}
	err := NewScriptError(CodeInvalidSince, "since does not satisfy bound")
	if err.ExitCode() != int8(CodeInvalidSince) {
		t.Fatalf("got exit code %d, want %d", err.ExitCode(), CodeInvalidSince)
	}
}

func TestFromSysError_MapsKnownKinds(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{IndexOutOfBoundErr("x"), CodeIndexOutOfBound},
		{ItemMissingErr("x"), CodeItemMissing},
		{LengthNotEnoughErr("x"), CodeLengthNotEnough},
		{EncodingErr("x"), CodeEncoding},
	}
	for _, c := range cases {
		got := FromSysError(c.err)
		if got.Code != c.want {
			t.Fatalf("FromSysError(%v) = %v, want code %v", c.err, got, c.want)
		}
	}
}

func TestFromSysError_PanicsOnUnknownError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected FromSysError to panic on a non-SysError input")
		}
	}()
	FromSysError(&ScriptError{Code: CodeAuthError})
}
