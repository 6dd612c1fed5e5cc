package dashboard

import (
	"testing"

	"github.com/KaramelBytes/datamind-cli/internal/dataset"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, headers []string, records ...map[string]any) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Build("test.csv", &dataset.Table{Headers: headers, Records: records})
	require.NoError(t, err)
	return ds
}
