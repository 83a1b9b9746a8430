package cli

import (
	"bytes"
	"testing"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/pluginhost"
)

func TestVersionCmd_PrintsManifestNameAndVersion(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	want := pluginhost.Name + " " + pluginhost.Version + "\n"
	if got := out.String(); got != want {
		t.Errorf("expected version output %q, got %q", want, got)
	}
}
