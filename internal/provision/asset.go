package provision

import "fmt"

// platform is one supported (GOOS, GOARCH) pair.
type platform struct {
	OS   string
	Arch string
}

// assetFormat holds the release-artifact naming fragments for one platform.
type assetFormat struct {
	OSLabel   string
	ArchLabel string
	Ext       string
}

// assetFormats enumerates every platform the upstream release pipeline
// publishes artifacts for. Asset names follow goreleaser defaults:
// {binary}_{OSLabel}_{ArchLabel}.{Ext}.
var assetFormats = map[platform]assetFormat{
	{"darwin", "arm64"}:  {"Darwin", "arm64", "tar.gz"},
	{"darwin", "amd64"}:  {"Darwin", "x86_64", "tar.gz"},
	{"linux", "arm64"}:   {"Linux", "arm64", "tar.gz"},
	{"linux", "amd64"}:   {"Linux", "x86_64", "tar.gz"},
	{"linux", "386"}:     {"Linux", "i386", "tar.gz"},
	{"windows", "arm64"}: {"Windows", "arm64", "zip"},
	{"windows", "amd64"}: {"Windows", "x86_64", "zip"},
	{"windows", "386"}:   {"Windows", "i386", "zip"},
}

// assetName computes the expected release asset name for a binary on the
// given platform. It is a pure function of its inputs.
func assetName(binary, goos, goarch string) (string, error) {
	f, ok := assetFormats[platform{goos, goarch}]
	if !ok {
		return "", fmt.Errorf("unsupported platform %s/%s", goos, goarch)
	}
	return fmt.Sprintf("%s_%s_%s.%s", binary, f.OSLabel, f.ArchLabel, f.Ext), nil
}

// usesZip reports whether the platform's artifacts are zip archives rather
// than gzipped tarballs.
func usesZip(goos string) bool {
	return goos == "windows"
}
