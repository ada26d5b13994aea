package docgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMessages_NoLinksUsesPlaceholder(t *testing.T) {
	ctx := PromptContext{RelPath: "a.ts", FileKind: "code", CodeFence: "ts", Code: "const a = 1;"}
	msgs := RenderMessages(LoadBuiltinTemplate(), ctx, "english", "neutral", 40, 3)

	assert.Len(t, msgs, 1)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "- (none)")
	assert.Contains(t, msgs[0].Content, "const a = 1;")
	assert.Contains(t, msgs[0].Content, "a.ts")
}

func TestRenderMessages_WithLinks(t *testing.T) {
	ctx := PromptContext{
		RelPath:   "a.ts",
		FileKind:  "code",
		CodeFence: "ts",
		Code:      "x",
		ImportsLinks: []LinkPair{
			{SrcRel: "b.tsx", DocRel: "src/b/b.md"},
		},
	}
	msgs := RenderMessages(LoadBuiltinTemplate(), ctx, "english", "neutral", 40, 3)
	assert.Contains(t, msgs[0].Content, "- b.tsx -> [src/b/b.md](src/b/b.md)")
}
