package markdown

import (
	"path/filepath"
	"testing"
)

func TestExtractImageURLsKeepsOrderAndDuplicates(t *testing.T) {
	content := "# 标题\n\n" +
		"![first](/uploads/2026/01/a.png)\n\n" +
		"正文 ![inline](https://cdn.example.com/b.jpg) 混排\n\n" +
		"![again](/uploads/2026/01/a.png)\n"

	urls := ExtractImageURLs(content)
	want := []string{
		"/uploads/2026/01/a.png",
		"https://cdn.example.com/b.jpg",
		"/uploads/2026/01/a.png",
	}
	if len(urls) != len(want) {
		t.Fatalf("urls len want %d got %d: %v", len(want), len(urls), urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Fatalf("urls[%d] want %s got %s", i, want[i], urls[i])
		}
	}
}

func TestExtractImageURLsEmptyContent(t *testing.T) {
	if urls := ExtractImageURLs("   \n\t"); urls != nil {
		t.Fatalf("blank content should yield nil, got %v", urls)
	}
	if urls := ExtractImageURLs("plain text without images"); len(urls) != 0 {
		t.Fatalf("content without images should yield none, got %v", urls)
	}
}

func TestExtractImageURLsIgnoresLinks(t *testing.T) {
	content := "[not an image](/uploads/2026/01/doc.pdf)\n\n![img](/uploads/2026/01/c.webp)"
	urls := ExtractImageURLs(content)
	if len(urls) != 1 || urls[0] != "/uploads/2026/01/c.webp" {
		t.Fatalf("expected only image destination, got %v", urls)
	}
}

func TestResolveLocalUploadPath(t *testing.T) {
	base := filepath.Join("var", "uploads")

	cases := []struct {
		name   string
		rawURL string
		want   string
		ok     bool
	}{
		{name: "root relative", rawURL: "/uploads/2026/01/a.png", want: filepath.Join(base, "2026", "01", "a.png"), ok: true},
		{name: "absolute http", rawURL: "http://blog.example.com/uploads/b.jpg", want: filepath.Join(base, "b.jpg"), ok: true},
		{name: "absolute https", rawURL: "https://blog.example.com/uploads/c/d.webp", want: filepath.Join(base, "c", "d.webp"), ok: true},
		{name: "external path", rawURL: "https://cdn.example.com/assets/x.png", ok: false},
		{name: "other prefix", rawURL: "/static/a.png", ok: false},
		{name: "traversal escapes prefix", rawURL: "/uploads/../etc/passwd", ok: false},
		{name: "bare prefix", rawURL: "/uploads/", ok: false},
		{name: "non http scheme", rawURL: "ftp://example.com/uploads/a.png", ok: false},
		{name: "empty", rawURL: "  ", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ResolveLocalUploadPath(tc.rawURL, base)
			if ok != tc.ok {
				t.Fatalf("ok want %v got %v", tc.ok, ok)
			}
			if ok && got != tc.want {
				t.Fatalf("path want %s got %s", tc.want, got)
			}
		})
	}
}
