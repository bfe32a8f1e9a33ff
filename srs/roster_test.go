package srs_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/srsradio/client/srs"
)

func TestRosterSyncInsertsAll(t *testing.T) {
	r := srs.NewRoster()

	local := srs.NewDefaultClient("local-guid-AAAAAAAAAAAA", "Me")
	peer := srs.NewDefaultClient("peer-guid-BBBBBBBBBBBBB", "Them")

	r.InsertOrReplace(local.ClientGUID, local)
	r.InsertOrReplace(peer.ClientGUID, peer)

	require.Equal(t, 2, r.Len())

	got, ok := r.Get(peer.ClientGUID)
	require.True(t, ok)
	require.Equal(t, peer, got)
}

func TestRosterMergeFieldsInsertsWhenAbsent(t *testing.T) {
	r := srs.NewRoster()
	info := srs.NewDefaultClient("new-guid-CCCCCCCCCCCCCC", "New")

	r.MergeFields(info.ClientGUID, info)

	got, ok := r.Get(info.ClientGUID)
	require.True(t, ok)
	require.Equal(t, info, got)
}

func TestRosterMergeFieldsOverwritesRadioInfoWhole(t *testing.T) {
	r := srs.NewRoster()
	info := srs.NewDefaultClient("guid-DDDDDDDDDDDDDDDDDDD", "Pilot")
	info.RadioInfo.Radios[1] = srs.NewRadioInformation(251_000_000, srs.AM)
	r.InsertOrReplace(info.ClientGUID, info)

	updated := info
	updated.RadioInfo = srs.RadioInfo{} // zero-value radio info, as if the
	// server only echoed a subset of fields
	r.MergeFields(info.ClientGUID, updated)

	got, _ := r.Get(info.ClientGUID)
	require.Equal(t, srs.RadioInfo{}, got.RadioInfo,
		"nested radio info must be replaced wholesale, not deep-merged; got %s", spew.Sdump(got.RadioInfo))
}

func TestRosterRemoveIsNoOpWhenAbsent(t *testing.T) {
	r := srs.NewRoster()
	r.InsertOrReplace("g1", srs.NewDefaultClient("g1", "One"))
	r.InsertOrReplace("g2", srs.NewDefaultClient("g2", "Two"))

	r.Remove("does-not-exist")
	require.Equal(t, 2, r.Len())

	r.Remove("g1")
	require.Equal(t, 1, r.Len())

	// Removing it again is still a no-op, not an error.
	r.Remove("g1")
	require.Equal(t, 1, r.Len())

	_, ok := r.Get("g2")
	require.True(t, ok)
}

func TestRosterSnapshotIsCopy(t *testing.T) {
	r := srs.NewRoster()
	r.InsertOrReplace("g1", srs.NewDefaultClient("g1", "One"))

	snap := r.Snapshot()
	snap["g2"] = srs.NewDefaultClient("g2", "Injected")

	require.Equal(t, 1, r.Len(), "mutating a snapshot must not affect the roster")
}
