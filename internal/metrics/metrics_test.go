package metrics

import (
	"testing"

	"github.com/paulhankin/pathgen/paths"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveReport(t *testing.T) {
	opts := &paths.Options{Tolerance: 1, Window: 2, Order: paths.SimplifyFirst, Layers: paths.LayerOriginal | paths.LayerCombined}
	r, err := paths.Generalize([]paths.Vec2{{0, 0}, {1, 1}, {2, 0}}, opts)
	require.NoError(t, err)

	before := testutil.ToFloat64(Generalizations.WithLabelValues("simplify-first"))
	ObserveReport(opts, r)
	require.Equal(t, before+1, testutil.ToFloat64(Generalizations.WithLabelValues("simplify-first")))

	require.Equal(t, 2, testutil.CollectAndCount(LayerPoints))
}
