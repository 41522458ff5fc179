package walker

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// testdataDir returns the absolute path to testdata/site.
func testdataDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("unable to determine test file location")
	}
	root, err := filepath.Abs(filepath.Join(filepath.Dir(filename), "..", "..", "testdata", "site"))
	if err != nil {
		t.Fatalf("resolve testdata path: %v", err)
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		t.Fatalf("testdata dir does not exist: %s", root)
	}
	return root
}

func relPaths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.RelPath
	}
	return out
}

func TestWalk_SampleSite(t *testing.T) {
	entries, err := Walk(Config{RootDir: testdataDir(t)})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	want := []string{".gitignore", "about.html", "blog/first-post.HTML", "css/style.css", "index.html", "notes.txt"}
	got := relPaths(entries)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	for _, e := range entries {
		if len(e.ContentHash) != 64 {
			t.Errorf("%s: expected SHA-256 hex hash, got %q", e.RelPath, e.ContentHash)
		}
		if e.Size <= 0 {
			t.Errorf("%s: expected size, got %d", e.RelPath, e.Size)
		}
	}
	if entries[1].Language != "HTML" || entries[2].Language != "HTML" {
		t.Errorf("expected HTML language, got %q / %q", entries[1].Language, entries[2].Language)
	}
}

func TestWalk_Exclude(t *testing.T) {
	entries, err := Walk(Config{RootDir: testdataDir(t), Exclude: []string{"*.css", ".gitignore", "blog/**"}})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	for _, rel := range relPaths(entries) {
		switch rel {
		case "css/style.css", ".gitignore", "blog/first-post.HTML":
			t.Errorf("%s should have been excluded", rel)
		}
	}
}

func TestWalk_SkipsBinaryAndLargeFiles(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>hi</h1>"), 0o644)
	os.WriteFile(filepath.Join(dir, "logo.png"), []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}, 0o644)
	big := make([]byte, 200)
	for i := range big {
		big[i] = 'A'
	}
	os.WriteFile(filepath.Join(dir, "big.html"), big, 0o644)

	entries, err := Walk(Config{RootDir: dir, MaxFileSize: 100})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if got := relPaths(entries); len(got) != 1 || got[0] != "index.html" {
		t.Errorf("expected only index.html, got %v", got)
	}
}

func TestWalk_NotADirectory(t *testing.T) {
	f := filepath.Join(t.TempDir(), "page.html")
	os.WriteFile(f, []byte("x"), 0o644)

	if _, err := Walk(Config{RootDir: f}); err == nil {
		t.Error("expected error for a file root")
	}
	if _, err := Walk(Config{RootDir: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Error("expected error for a missing root")
	}
}

func TestGitignore(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("# comment\n*.log\nbuild/\nsecret/key.txt\n"), 0o644)
	os.MkdirAll(filepath.Join(dir, "build"), 0o755)
	os.MkdirAll(filepath.Join(dir, "secret"), 0o755)
	os.MkdirAll(filepath.Join(dir, "docs", "build"), 0o755)
	os.WriteFile(filepath.Join(dir, "build", "out.html"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "docs", "build", "out.html"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "docs", "debug.log"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "secret", "key.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "secret", "readme.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "build.html"), []byte("x"), 0o644)

	entries, err := Walk(Config{RootDir: dir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	want := map[string]bool{".gitignore": true, "build.html": true, "secret/readme.txt": true}
	got := relPaths(entries)
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), got)
	}
	for _, rel := range got {
		if !want[rel] {
			t.Errorf("unexpected entry %q", rel)
		}
	}
}

func TestFilesArePrefixedWithRootName(t *testing.T) {
	root := testdataDir(t)
	entries, err := Walk(Config{RootDir: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	files := Files(root, entries)
	if files[1].Name != "site/about.html" {
		t.Errorf("expected site/about.html, got %q", files[1].Name)
	}

	rc, err := files[1].Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if len(data) == 0 {
		t.Error("expected file content")
	}
}

func TestFingerprint(t *testing.T) {
	a := []Entry{{RelPath: "index.html", ContentHash: "aa"}}
	b := []Entry{{RelPath: "index.html", ContentHash: "bb"}}
	c := []Entry{{RelPath: "home.html", ContentHash: "aa"}}

	if Fingerprint(a) == Fingerprint(b) || Fingerprint(a) == Fingerprint(c) {
		t.Error("fingerprint should change with content and names")
	}
	if Fingerprint(a) != Fingerprint([]Entry{{RelPath: "index.html", ContentHash: "aa"}}) {
		t.Error("fingerprint should be stable")
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := map[string]string{
		"index.html":     "HTML",
		"site/About.HTM": "HTML",
		"style.css":      "CSS",
		"README.md":      "Markdown",
		"app.tsx":        "TypeScript",
		"Makefile":       "unknown",
		"archive.tar.gz": "unknown",
	}
	for name, want := range tests {
		if got := DetectLanguage(name); got != want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestSummarize(t *testing.T) {
	entries, err := Walk(Config{RootDir: testdataDir(t)})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if got, want := Summarize(entries), "3 HTML, 1 CSS, 1 Text, 1 other"; got != want {
		t.Errorf("Summarize() = %q, want %q", got, want)
	}
	if got := Summarize(nil); got != "" {
		t.Errorf("Summarize(nil) = %q, want empty", got)
	}
}
