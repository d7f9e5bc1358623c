package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIndexByPathAndByDigest(t *testing.T) {
	idx := New()
	idx.Add(&FileRecord{RelativePath: "a.txt", Digest: "d1", MTime: time.Now(), Size: 1})
	idx.Add(&FileRecord{RelativePath: "b.txt", Digest: "d1", MTime: time.Now(), Size: 1})
	idx.Add(&FileRecord{RelativePath: "c.txt", Digest: "d2", MTime: time.Now(), Size: 2})

	require.Equal(t, 3, idx.Len())
	require.NotNil(t, idx.ByPath("a.txt"))
	require.Nil(t, idx.ByPath("missing.txt"))

	d1 := idx.ByDigest("d1")
	require.Len(t, d1, 2)

	d2 := idx.ByDigest("d2")
	require.Len(t, d2, 1)

	require.Empty(t, idx.ByDigest("no-such-digest"))
}

func TestIndexAllReturnsEveryRecord(t *testing.T) {
	idx := New()
	idx.Add(&FileRecord{RelativePath: "a.txt", Digest: "d1", MTime: time.Now(), Size: 1})
	idx.Add(&FileRecord{RelativePath: "b.txt", Digest: "d2", MTime: time.Now(), Size: 1})

	require.Len(t, idx.All(), 2)
}
