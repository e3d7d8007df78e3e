package osm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corfu-labs/osmpbf/osm"
)

func TestAccessorsOnEmptyMap(t *testing.T) {
	var m osm.Map
	require.Equal(t, 0, m.NumNodes())
	require.Equal(t, 0, m.NumWays())
	_, ok := m.Node(0)
	require.False(t, ok)
	_, ok = m.Way(0)
	require.False(t, ok)
	_, ok = m.Bounds()
	require.False(t, ok)
	require.Equal(t, -1, m.FindNode(1))
	require.Equal(t, -1, m.FindWay(1))
}

func TestAccessorsOnNilMap(t *testing.T) {
	var m *osm.Map
	require.Equal(t, 0, m.NumNodes())
	require.Equal(t, 0, m.NumWays())
	_, ok := m.Bounds()
	require.False(t, ok)
}

func TestMapAccessorsOutOfRange(t *testing.T) {
	m := &osm.Map{
		BBox:  &osm.BBox{MinLon: 1, MaxLon: 2, MaxLat: 3, MinLat: 4},
		Nodes: []osm.Node{{ID: 213352011, Lat: 409251930, Lon: -731338570}},
		Ways: []osm.Way{
			{ID: 20175414, Refs: []int64{1, 2, 3}, Tags: []osm.Tag{{Key: "highway", Value: "service"}}},
		},
	}

	n, ok := m.Node(0)
	require.True(t, ok)
	require.Equal(t, int64(213352011), n.ID)
	_, ok = m.Node(1)
	require.False(t, ok)
	_, ok = m.Node(-1)
	require.False(t, ok)

	w, ok := m.Way(0)
	require.True(t, ok)
	require.Equal(t, 3, w.RefCount())
	ref, ok := w.Ref(2)
	require.True(t, ok)
	require.Equal(t, int64(3), ref)
	_, ok = w.Ref(3)
	require.False(t, ok)

	v, ok := w.TagValue("highway")
	require.True(t, ok)
	require.Equal(t, "service", v)
	_, ok = w.TagValue("surface")
	require.False(t, ok)

	require.Equal(t, -1, m.FindNode(999999999999))
	require.Equal(t, 0, m.FindNode(213352011))
	require.Equal(t, 0, m.FindWay(20175414))

	bbox, ok := m.Bounds()
	require.True(t, ok)
	require.Equal(t, int64(4), bbox.MinLat)
}
