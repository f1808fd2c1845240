package markdown

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/RuleViz/LightBlog/internal/constants"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var parser = goldmark.New()

// ExtractImageURLs 解析 Markdown 正文，按出现顺序返回所有图片地址（不去重）
func ExtractImageURLs(content string) []string {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	source := []byte(content)
	doc := parser.Parser().Parse(text.NewReader(source))

	var urls []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if image, ok := n.(*ast.Image); ok {
			if dest := strings.TrimSpace(string(image.Destination)); dest != "" {
				urls = append(urls, dest)
			}
		}
		return ast.WalkContinue, nil
	})
	return urls
}

// ResolveLocalUploadPath 将图片地址解析为上传目录下的本地文件路径。
// 仅处理站内上传资源：根相对的 /uploads/... 路径，或 path 以 /uploads/
// 开头的绝对 http(s) 地址；外站图片与无法解析的地址一律返回 false。
func ResolveLocalUploadPath(rawURL, uploadBaseDir string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", false
	}

	urlPath := ""
	if strings.HasPrefix(rawURL, "/") {
		urlPath = rawURL
	} else {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return "", false
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return "", false
		}
		urlPath = parsed.Path
	}

	cleaned := path.Clean(urlPath)
	prefix := constants.UploadURLPrefix + "/"
	if !strings.HasPrefix(cleaned, prefix) {
		return "", false
	}

	relative := strings.TrimPrefix(cleaned, prefix)
	if relative == "" {
		return "", false
	}
	return filepath.Join(uploadBaseDir, filepath.FromSlash(relative)), true
}
