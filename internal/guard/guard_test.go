package guard

import "testing"

func TestShellEscapeArg(t *testing.T) {
	cases := map[string]string{
		"it's":  `'it'\''s'`,
		"":      "''",
		"hello": "'hello'",
		"a'b'c": `'a'\''b'\''c'`,
	}
	for in, want := range cases {
		if got := ShellEscapeArg(in); got != want {
			t.Errorf("ShellEscapeArg(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateCommand(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		got, err := ValidateCommand("  echo hi  ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "echo hi" {
			t.Errorf("got %q, want %q", got, "echo hi")
		}
	})

	t.Run("rejects pipe", func(t *testing.T) {
		_, err := ValidateCommand("ls | grep foo")
		if err == nil || !contains(err.Error(), "'|'") {
			t.Fatalf("expected error mentioning '|', got %v", err)
		}
	})

	t.Run("rejects null byte", func(t *testing.T) {
		_, err := ValidateCommand("ls\x00rm")
		if err == nil || !contains(err.Error(), "null byte") {
			t.Fatalf("expected error mentioning null byte, got %v", err)
		}
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ValidateCommand("   ")
		if err == nil {
			t.Fatal("expected error for empty command")
		}
	})

	for _, meta := range []string{";", "&", "|", "`", "$", "<", ">", "\\"} {
		meta := meta
		t.Run("rejects metachar "+meta, func(t *testing.T) {
			_, err := ValidateCommand("echo" + meta + "x")
			if err == nil {
				t.Fatalf("expected error for metacharacter %q", meta)
			}
		})
	}
}

func TestValidateEnvKey(t *testing.T) {
	valid := []string{"FOO", "_FOO", "FOO_BAR2", "a"}
	for _, k := range valid {
		if err := ValidateEnvKey(k); err != nil {
			t.Errorf("ValidateEnvKey(%q) unexpected error: %v", k, err)
		}
	}

	invalid := []string{"", "2FOO", "FOO-BAR", "FOO BAR", "FOO=BAR"}
	for _, k := range invalid {
		if err := ValidateEnvKey(k); err == nil {
			t.Errorf("ValidateEnvKey(%q) expected error, got nil", k)
		}
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
