package provision

import "testing"

func TestAssetName(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
	}{
		{"linux", "amd64", "mcp-grafana_Linux_x86_64.tar.gz"},
		{"linux", "arm64", "mcp-grafana_Linux_arm64.tar.gz"},
		{"linux", "386", "mcp-grafana_Linux_i386.tar.gz"},
		{"darwin", "amd64", "mcp-grafana_Darwin_x86_64.tar.gz"},
		{"darwin", "arm64", "mcp-grafana_Darwin_arm64.tar.gz"},
		{"windows", "amd64", "mcp-grafana_Windows_x86_64.zip"},
		{"windows", "arm64", "mcp-grafana_Windows_arm64.zip"},
		{"windows", "386", "mcp-grafana_Windows_i386.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := assetName("mcp-grafana", tt.goos, tt.goarch)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("assetName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAssetNameStable(t *testing.T) {
	first, err := assetName("mcp-grafana", "linux", "amd64")
	if err != nil {
		t.Fatal(err)
	}
	second, err := assetName("mcp-grafana", "linux", "amd64")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("assetName not stable: %q vs %q", first, second)
	}
}

func TestAssetNameUnsupportedPlatform(t *testing.T) {
	tests := []struct{ goos, goarch string }{
		{"plan9", "amd64"},
		{"linux", "riscv64"},
		{"darwin", "386"},
	}
	for _, tt := range tests {
		if _, err := assetName("mcp-grafana", tt.goos, tt.goarch); err == nil {
			t.Errorf("assetName(%s/%s) succeeded, want error", tt.goos, tt.goarch)
		}
	}
}

func TestAssetFormatsCoverall(t *testing.T) {
	// Every supported pair must have labels from the closed vocabularies.
	osLabels := map[string]bool{"Darwin": true, "Linux": true, "Windows": true}
	archLabels := map[string]bool{"arm64": true, "i386": true, "x86_64": true}

	for plat, f := range assetFormats {
		if !osLabels[f.OSLabel] {
			t.Errorf("%v: unexpected OS label %q", plat, f.OSLabel)
		}
		if !archLabels[f.ArchLabel] {
			t.Errorf("%v: unexpected arch label %q", plat, f.ArchLabel)
		}
		wantExt := "tar.gz"
		if plat.OS == "windows" {
			wantExt = "zip"
		}
		if f.Ext != wantExt {
			t.Errorf("%v: ext = %q, want %q", plat, f.Ext, wantExt)
		}
	}
}
