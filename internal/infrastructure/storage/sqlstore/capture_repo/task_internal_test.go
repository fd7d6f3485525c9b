package capture_repo

import (
	"strings"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/id"
)

func TestDecrementQuery_StatusAssignedBeforeQuantity(t *testing.T) {
	r := &Repo{builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)}
	taskID := id.New()

	sql, args, err := r.decrementQuery(taskID, 4, false).ToSql()
	require.NoError(t, err)

	statusAt := strings.Index(sql, "status = CASE")
	quantityAt := strings.Index(sql, "scanned_quantity = CASE")
	require.NotEqual(t, -1, statusAt, sql)
	require.NotEqual(t, -1, quantityAt, sql)
	assert.Less(t, statusAt, quantityAt, sql)
	assert.Contains(t, sql, "status <> ?")
	assert.Equal(t, []any{4, 4, 4, taskID, "completed"}, args)
}
