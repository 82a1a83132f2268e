package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitStatements(t *testing.T) {
	script := `
-- leading comment
CREATE TABLE a (id TEXT);

-- another
CREATE INDEX idx_a ON a(id);
;
`
	assert.Equal(t, []string{
		"CREATE TABLE a (id TEXT)",
		"CREATE INDEX idx_a ON a(id)",
	}, splitStatements(script))
}

func TestSplitStatements_Empty(t *testing.T) {
	assert.Empty(t, splitStatements("-- nothing here\n"))
}
