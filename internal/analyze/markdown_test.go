package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownAnalyzer_Facts(t *testing.T) {
	t.Parallel()
	lines := splitLines(`
# Title

See [the docs](https://example.com/docs) for more.

` + "```go" + `
fmt.Println("hi")
` + "```" + `
`)
	f := markdownAnalyzer{}.Analyze(lines)
	assert.Contains(t, f.Classes, "# Title")
	assert.NotEmpty(t, f.Imports)
	assert.Contains(t, f.Decorators, "```go")
}

func TestMarkdownAnalyzer_StructureKeepRangesHeadersOnly(t *testing.T) {
	t.Parallel()
	lines := splitLines(`
# Title

Some prose line.

## Section
`)
	a := markdownAnalyzer{}
	ranges := a.StructureKeepRanges(lines, a.Analyze(lines))
	assert.True(t, coversLine(ranges, 0))
	assert.False(t, coversLine(ranges, 2))
	assert.True(t, coversLine(ranges, 4))
}
