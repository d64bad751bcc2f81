// Package links validates internal markdown links across a documentation
// tree: relative and root-relative file targets, directory indexes, and
// GitHub-style header anchors.
package links

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// linkPattern matches [text](target) inline links.
var linkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)

// Link is one inline markdown link found in a file.
type Link struct {
	Text   string
	Target string
	Line   int
}

// BrokenLink records a link whose target could not be resolved.
type BrokenLink struct {
	File         string `json:"file"`
	Line         int    `json:"line"`
	Text         string `json:"text"`
	Link         string `json:"link"`
	Issue        string `json:"issue"`
	ResolvedPath string `json:"resolved_path"`
}

// AnchorIssue records a link whose target file exists but whose fragment
// does not match any header or explicit anchor.
type AnchorIssue struct {
	File       string `json:"file"`
	Line       int    `json:"line"`
	Text       string `json:"text"`
	Link       string `json:"link"`
	Anchor     string `json:"anchor"`
	TargetFile string `json:"target_file"`
}

// Result is the outcome of validating one documentation tree.
type Result struct {
	Valid        []string      `json:"valid_links"`
	Broken       []BrokenLink  `json:"broken_links"`
	AnchorIssues []AnchorIssue `json:"anchor_issues"`
	FilesScanned int           `json:"files_scanned"`
}

// TotalLinks is the number of links that resolved plus those that did not.
func (r *Result) TotalLinks() int { return len(r.Valid) + len(r.Broken) }

// IssueCount is the number of findings that need fixing.
func (r *Result) IssueCount() int { return len(r.Broken) + len(r.AnchorIssues) }

// Validator checks every internal link under DocsRoot plus the markdown
// files at ProjectRoot.
type Validator struct {
	DocsRoot    string
	ProjectRoot string

	// Concurrency bounds the number of files scanned in parallel.
	// Zero means GOMAXPROCS.
	Concurrency int
}

// NewValidator builds a validator rooted at docsRoot, with the project root
// one level up.
func NewValidator(docsRoot string) (*Validator, error) {
	abs, err := filepath.Abs(docsRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving docs root: %w", err)
	}
	return &Validator{DocsRoot: abs, ProjectRoot: filepath.Dir(abs)}, nil
}

// extractLinks pulls internal links out of markdown content. External
// schemes (http, https, mailto) are skipped.
func extractLinks(content string) []Link {
	var links []Link
	for i, line := range strings.Split(content, "\n") {
		for _, m := range linkPattern.FindAllStringSubmatch(line, -1) {
			target := m[2]
			if strings.HasPrefix(target, "http://") ||
				strings.HasPrefix(target, "https://") ||
				strings.HasPrefix(target, "mailto:") {
				continue
			}
			links = append(links, Link{Text: m[1], Target: target, Line: i + 1})
		}
	}
	return links
}

// resolveTarget maps a link target to an absolute filesystem path. Leading
// "/" is project-root relative; everything else resolves against the
// linking file's directory.
func (v *Validator) resolveTarget(currentFile, target string) string {
	path, _, _ := strings.Cut(target, "#")
	if strings.HasPrefix(path, "/") {
		return filepath.Join(v.ProjectRoot, path[1:])
	}
	return filepath.Join(filepath.Dir(currentFile), path)
}

var anchorCharset = regexp.MustCompile(`[^\w\-]`)

// anchorExists reports whether the fragment matches a header or an explicit
// anchor tag in the target markdown file.
func anchorExists(targetPath, anchor string) bool {
	if filepath.Ext(targetPath) != ".md" {
		return false
	}
	data, err := os.ReadFile(targetPath)
	if err != nil {
		return false
	}
	content := string(data)

	normalized := anchorCharset.ReplaceAllString(
		strings.ReplaceAll(strings.ToLower(anchor), " ", "-"), "")

	for _, candidate := range []string{anchor, strings.ReplaceAll(anchor, "-", " "), normalized} {
		pattern := `(?im)^#+\s+.*` + regexp.QuoteMeta(candidate) + `.*$`
		if matched, err := regexp.MatchString(pattern, content); err == nil && matched {
			return true
		}
	}

	return strings.Contains(content, fmt.Sprintf(`<a name=%q`, anchor)) ||
		strings.Contains(content, fmt.Sprintf(`id=%q`, anchor))
}

// fileResult collects findings from one scanned file, merged in file order
// so the aggregate result is deterministic.
type fileResult struct {
	valid        []string
	broken       []BrokenLink
	anchorIssues []AnchorIssue
}

// checkLink validates one link from currentFile.
func (v *Validator) checkLink(currentFile string, link Link, out *fileResult) {
	rel, err := filepath.Rel(v.ProjectRoot, currentFile)
	if err != nil {
		rel = currentFile
	}
	rel = filepath.ToSlash(rel)

	// Directory links need an index document inside.
	if strings.HasSuffix(link.Target, "/") {
		dir := v.resolveTarget(currentFile, link.Target)
		for _, index := range []string{"README.md", "index.md"} {
			if _, err := os.Stat(filepath.Join(dir, index)); err == nil {
				out.valid = append(out.valid, fmt.Sprintf("%s:%d → %s", rel, link.Line, link.Target))
				return
			}
		}
		out.broken = append(out.broken, BrokenLink{
			File:         rel,
			Line:         link.Line,
			Text:         link.Text,
			Link:         link.Target,
			Issue:        "Directory index not found",
			ResolvedPath: dir,
		})
		return
	}

	path, anchor, hasAnchor := strings.Cut(link.Target, "#")
	if hasAnchor {
		if decoded, err := url.PathUnescape(anchor); err == nil {
			anchor = decoded
		}
	}

	target := currentFile
	if path != "" {
		target = v.resolveTarget(currentFile, path)
	}

	if _, err := os.Stat(target); err != nil {
		out.broken = append(out.broken, BrokenLink{
			File:         rel,
			Line:         link.Line,
			Text:         link.Text,
			Link:         link.Target,
			Issue:        "File not found",
			ResolvedPath: target,
		})
		return
	}

	if hasAnchor && anchor != "" && !anchorExists(target, anchor) {
		targetRel, err := filepath.Rel(v.ProjectRoot, target)
		if err != nil {
			targetRel = target
		}
		out.anchorIssues = append(out.anchorIssues, AnchorIssue{
			File:       rel,
			Line:       link.Line,
			Text:       link.Text,
			Link:       link.Target,
			Anchor:     anchor,
			TargetFile: filepath.ToSlash(targetRel),
		})
		return
	}

	out.valid = append(out.valid, fmt.Sprintf("%s:%d → %s", rel, link.Line, link.Target))
}

// markdownFiles lists every file to scan: the docs tree recursively plus
// markdown files at the project root, sorted.
func (v *Validator) markdownFiles() ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	err := filepath.WalkDir(v.DocsRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".md" && !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking docs root: %w", err)
	}

	rootFiles, err := filepath.Glob(filepath.Join(v.ProjectRoot, "*.md"))
	if err != nil {
		return nil, err
	}
	for _, path := range rootFiles {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	sort.Strings(files)
	return files, nil
}

// Validate scans every markdown file and checks each internal link. Files
// are scanned in parallel; results merge in sorted file order.
func (v *Validator) Validate(ctx context.Context) (*Result, error) {
	files, err := v.markdownFiles()
	if err != nil {
		return nil, err
	}

	perFile := make([]fileResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	limit := v.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				// Unreadable files contribute nothing.
				return nil
			}
			for _, link := range extractLinks(string(data)) {
				v.checkLink(file, link, &perFile[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{FilesScanned: len(files)}
	for _, fr := range perFile {
		result.Valid = append(result.Valid, fr.valid...)
		result.Broken = append(result.Broken, fr.broken...)
		result.AnchorIssues = append(result.AnchorIssues, fr.anchorIssues...)
	}
	return result, nil
}
