package pattern_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/2x3systems/gplan/pattern"
)

func TestParse(t *testing.T) {
	X, err := pattern.Parse("(1:7)-[:3]->(2:8)<-[:3]-(3:7), (1)-[:5|4]-(3)")
	require.NoError(t, err)
	require.Equal(t, 3, X.VertexCount())
	require.Equal(t, 3, X.EdgeCount())

	v1, _ := X.Vertex(1)
	require.Equal(t, pattern.TypeSet{7}, v1.Types)
	v2, _ := X.Vertex(2)
	require.Equal(t, pattern.TypeSet{8}, v2.Types)

	edges := X.Edges()
	require.Equal(t, pattern.Edge{ID: 1, Src: 1, Dst: 2, Types: pattern.TypeSet{3}, Directed: true}, edges[0])
	require.Equal(t, pattern.Edge{ID: 2, Src: 3, Dst: 2, Types: pattern.TypeSet{3}, Directed: true}, edges[1])
	require.Equal(t, pattern.Edge{ID: 3, Src: 1, Dst: 3, Types: pattern.TypeSet{4, 5}}, edges[2])
}

func TestParseStringRoundTrip(t *testing.T) {
	for _, expr := range []string{
		"(1:7)-[:3]->(2:8)",
		"(1)-[]-(2), (2)-[:1|2]->(3:9), (3)-[]->(3)",
		"(4:1|2)",
		"(1)-[]-(2), (5:3)",
	} {
		X := pattern.MustParse(expr)
		require.Equal(t, expr, X.String())

		Y := pattern.MustParse(X.String())
		require.True(t, X.IsIsomorphicTo(Y))
	}

	// Edges are always written source first
	require.Equal(t, "(1:7)-[:3]->(2:8)", pattern.MustParse("(2:8)<-[:3]-(1:7)").String())
}

func TestParseErrors(t *testing.T) {
	for _, expr := range []string{
		"",
		"(1",
		"(1)-[]-",
		"(1)<-[]->(2)",
		"(1:2)-[]-(1:3)",
		"(a)-[]-(2)",
		"(1)-[]=(2)",
	} {
		_, err := pattern.Parse(expr)
		require.Error(t, err, expr)
		require.True(t, errors.Is(err, pattern.ErrBadExpr), "%q: %v", expr, err)
	}
}
