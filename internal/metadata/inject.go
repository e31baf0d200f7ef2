package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/openstay/openstay-release/internal/logging"
)

const (
	// ScriptID identifies the runtime build-info script.
	ScriptID = "openstay-build-info"
	// GlobalName is the window property holding the frozen build record.
	GlobalName = "__OPENSTAY_BUILD__"
)

// Injector stamps build metadata into HTML documents.
type Injector struct {
	log *slog.Logger
}

// NewInjector creates an Injector.
func NewInjector(log *slog.Logger) *Injector {
	return &Injector{log: logging.OrDiscard(log)}
}

// Inject returns doc with the metadata metas and build-info script in its
// head. Without the deployment flag doc is returned untouched. Existing
// metas and the script are updated in place, so injecting twice yields the
// same document as injecting once. Metas the document's authors wrote are
// kept.
//
// Only the content between <head> and </head> is re-serialized; the bytes
// around it are copied as they are. When the document has no explicit head
// block, or the parser moved elements into or out of it, the whole
// document is rendered instead.
func (i *Injector) Inject(doc []byte, md BuildMetadata, deployment bool) ([]byte, error) {
	if !deployment {
		i.log.Info("not a deployment build, skipping metadata injection")
		return doc, nil
	}

	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	head := findElement(root, atom.Head)
	if head == nil {
		return nil, fmt.Errorf("parsing html: no head element")
	}
	parsedElements := countElements(head)

	metas := md.Metas()
	keep := make(map[string]bool, len(metas))
	for _, m := range metas {
		keep[m[0]] = true
		upsertMeta(head, m[0], m[1])
	}
	removeStaleMetas(head, keep)

	script, err := buildScript(md)
	if err != nil {
		return nil, err
	}
	upsertScript(head, script)

	var buf bytes.Buffer
	if start, end, elements, ok := headSpan(doc); ok && elements == parsedElements {
		buf.Write(doc[:start])
		for c := head.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return nil, fmt.Errorf("rendering html: %w", err)
			}
		}
		buf.Write(doc[end:])
	} else {
		i.log.Debug("no explicit head block, rendering whole document")
		if err := html.Render(&buf, root); err != nil {
			return nil, fmt.Errorf("rendering html: %w", err)
		}
	}
	i.log.Debug("metadata injected", "version", md.Version, "metas", len(metas))
	return buf.Bytes(), nil
}

// headSpan finds the bytes between the first <head> start tag and the
// following </head>, and counts the elements opened in between.
func headSpan(doc []byte) (start, end, elements int, ok bool) {
	z := html.NewTokenizer(bytes.NewReader(doc))
	offset := 0
	start = -1
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return 0, 0, 0, false
		}
		size := len(z.Raw())
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch {
			case start < 0 && tt == html.StartTagToken && string(name) == "head":
				start = offset + size
			case start >= 0:
				elements++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if start >= 0 && string(name) == "head" {
				return start, offset, elements, true
			}
		}
		offset += size
	}
}

func countElements(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			count++
		}
		count += countElements(c)
	}
	return count
}

// InjectFile stamps the document at path in place. The file is neither
// read nor written when the deployment flag is off.
func (i *Injector) InjectFile(path string, md BuildMetadata, deployment bool) error {
	if !deployment {
		i.log.Info("not a deployment build, skipping metadata injection", "path", path)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	out, err := i.Inject(data, md, true)
	if err != nil {
		return fmt.Errorf("stamping %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	i.log.Info("stamped build metadata", "path", path, "version", md.Version)
	return nil
}

// Script returns the JavaScript assigned to window.__OPENSTAY_BUILD__.
func Script(md BuildMetadata) (string, error) {
	return buildScript(md)
}

func buildScript(md BuildMetadata) (string, error) {
	payload, err := json.Marshal(md)
	if err != nil {
		return "", fmt.Errorf("encoding build metadata: %w", err)
	}
	return fmt.Sprintf("window.%s = Object.freeze(%s);", GlobalName, payload), nil
}

func upsertMeta(head *html.Node, name, content string) {
	if n := findMeta(head, name); n != nil {
		setAttr(n, "content", content)
		return
	}
	appendToHead(head, &html.Node{
		Type:     html.ElementNode,
		Data:     "meta",
		DataAtom: atom.Meta,
		Attr: []html.Attribute{
			{Key: "name", Val: name},
			{Key: "content", Val: content},
		},
	})
}

func upsertScript(head *html.Node, js string) {
	for n := head.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && n.DataAtom == atom.Script && attr(n, "id") == ScriptID {
			for n.FirstChild != nil {
				n.RemoveChild(n.FirstChild)
			}
			n.AppendChild(&html.Node{Type: html.TextNode, Data: js})
			return
		}
	}

	script := &html.Node{
		Type:     html.ElementNode,
		Data:     "script",
		DataAtom: atom.Script,
		Attr:     []html.Attribute{{Key: "id", Val: ScriptID}},
	}
	script.AppendChild(&html.Node{Type: html.TextNode, Data: js})
	appendToHead(head, script)
}

// removeStaleMetas drops managed metas from an earlier run that the
// current metadata no longer carries, such as a cleared git tag.
func removeStaleMetas(head *html.Node, keep map[string]bool) {
	var stale []*html.Node
	for n := head.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode || n.DataAtom != atom.Meta {
			continue
		}
		name := attr(n, "name")
		if isManagedMeta(name) && !keep[name] {
			stale = append(stale, n)
		}
	}
	for _, n := range stale {
		if next := n.NextSibling; next != nil && next.Type == html.TextNode && strings.TrimSpace(next.Data) == "" {
			head.RemoveChild(next)
		}
		head.RemoveChild(n)
	}
}

// managedMetas are the fixed names Metas can emit.
var managedMetas = map[string]bool{
	"build-version":     true,
	"build-time":        true,
	"build-timestamp":   true,
	"build-environment": true,
	"build-type":        true,
	"deployment-type":   true,
	"git-commit":        true,
	"git-branch":        true,
	"git-tag":           true,
}

func isManagedMeta(name string) bool {
	return managedMetas[name] || strings.HasPrefix(name, CustomMetaPrefix)
}

// appendToHead places n right before </head>, on its own line.
func appendToHead(head *html.Node, n *html.Node) {
	head.AppendChild(n)
	head.AppendChild(&html.Node{Type: html.TextNode, Data: "\n"})
}

func findMeta(head *html.Node, name string) *html.Node {
	for n := head.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && n.DataAtom == atom.Meta && attr(n, "name") == name {
			return n
		}
	}
	return nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
