package docgen

import (
	_ "embed"
	"strconv"
	"strings"
)

//go:embed templates/doc_prompt.md
var builtinPromptTemplate string

// LoadBuiltinTemplate returns the packaged default prompt template.
func LoadBuiltinTemplate() string {
	return builtinPromptTemplate
}

const noLinksPlaceholder = "- (none)"

// RenderMessages fills template's named placeholders from ctx and the given
// opaque pass-through strings, returning a single user-role message.
func RenderMessages(template string, ctx PromptContext, language, tone string, snippetMaxLinesPerBlock, maxSnippetBlocks int) []Message {
	replacer := strings.NewReplacer(
		"{language}", language,
		"{tone}", tone,
		"{rel_path}", filepathToSlashSafe(ctx.RelPath),
		"{file_kind}", ctx.FileKind,
		"{imports_md}", renderLinks(ctx.ImportsLinks),
		"{imported_by_md}", renderLinks(ctx.ImportedByLinks),
		"{max_snippet_blocks}", strconv.Itoa(maxSnippetBlocks),
		"{snippet_max_lines_per_block}", strconv.Itoa(snippetMaxLinesPerBlock),
		"{code_fence}", ctx.CodeFence,
		"{code}", ctx.Code,
	)
	content := replacer.Replace(template)

	return []Message{{Role: RoleUser, Content: content}}
}

// renderLinks renders a bullet list of "- SRC -> [DOC](DOC)" entries in
// posix path form, or the literal placeholder when there are no edges.
func renderLinks(links []LinkPair) string {
	if len(links) == 0 {
		return noLinksPlaceholder
	}

	var b strings.Builder
	for i, l := range links {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(l.SrcRel)
		b.WriteString(" -> [")
		b.WriteString(l.DocRel)
		b.WriteString("](")
		b.WriteString(l.DocRel)
		b.WriteString(")")
	}
	return b.String()
}

func filepathToSlashSafe(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
