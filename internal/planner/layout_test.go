package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/geometry"
)

func seatGuest(t *testing.T, e *Engine, name, chairID string) domain.Guest {
	t.Helper()
	g, err := e.AssignGuestByName(name, chairID)
	require.NoError(t, err)
	return g
}

func tableIDs(e *Engine) []string {
	var ids []string
	for _, tb := range e.Tables() {
		ids = append(ids, tb.ID)
	}
	return ids
}

func TestShrinkPrefersEmptyTables(t *testing.T) {
	e := newTestEngine()
	e.CreateDefaultLayout(5, domain.ModeLess)
	g := seatGuest(t, e, "Anna", "t3_c1")

	require.NoError(t, e.SetTableCount(4, false))

	assert.Len(t, e.Tables(), 4)
	assert.Contains(t, tableIDs(e), "t3")
	assert.False(t, e.Tables()[0].IsHead, "empty tables go in table order, head first")
	got, err := e.Guest(g.ID)
	require.NoError(t, err)
	assert.Equal(t, "t3_c1", got.AssignedTo)
	assertBijection(t, e)
}

func TestShrinkNeedsConfirmationForSeatedTables(t *testing.T) {
	e := newTestEngine()
	e.CreateDefaultLayout(5, domain.ModeLess)
	for _, id := range []string{"t1", "t3", "t4", "t5"} {
		seatGuest(t, e, "A "+id, id+"_c1")
		seatGuest(t, e, "B "+id, id+"_c2")
	}
	lonely := seatGuest(t, e, "Solo", "t2_c1")
	before := e.Snapshot()

	err := e.SetTableCount(4, false)
	ce, ok := NeedsConfirmation(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, []string{"t2"}, ce.TableIDs)
	assert.Equal(t, []string{lonely.ID}, ce.GuestIDs)
	assert.Equal(t, before, e.Snapshot())

	require.NoError(t, e.SetTableCount(4, true))
	assert.NotContains(t, tableIDs(e), "t2")
	for i, tb := range e.Tables() {
		assert.Equal(t, i+1, tb.Number)
	}
	got, err := e.Guest(lonely.ID)
	require.NoError(t, err)
	assert.False(t, got.Assigned())
	assertBijection(t, e)
}

func TestGrowAddsBlueprintSlots(t *testing.T) {
	e := defaultEngine(t)

	require.NoError(t, e.SetTableCount(15, false))

	tables := e.Tables()
	require.Len(t, tables, 15)
	assert.Equal(t, "t14", tables[13].ID)
	assert.InDelta(t, 7.5, tables[13].X, 1e-9)
	assert.InDelta(t, 1.1, tables[13].Y, 1e-9)
	assert.Equal(t, 15, tables[14].Number)
}

func TestSetTableCountClamps(t *testing.T) {
	e := defaultEngine(t)

	require.NoError(t, e.SetTableCount(2, false))
	assert.Len(t, e.Tables(), MinTables)

	require.NoError(t, e.SetTableCount(99, false))
	assert.Len(t, e.Tables(), MaxTables)
}

func TestAddTable(t *testing.T) {
	e := defaultEngine(t)

	tb, err := e.AddTable()
	require.NoError(t, err)
	assert.Equal(t, "t14", tb.ID)
	assert.Equal(t, 14, tb.Number)
	assert.False(t, tb.IsHead)
	assert.NotEmpty(t, tb.Chairs)

	e.CreateDefaultLayout(MaxTables, domain.ModeLess)
	_, err = e.AddTable()
	assert.ErrorIs(t, err, ErrTableLimit)
}

func TestAddTableReplacesMissingHeadTable(t *testing.T) {
	e := defaultEngine(t)
	require.NoError(t, e.DeleteTable("t1", false))

	for i := 0; i < 4; i++ {
		_, err := e.AddTable()
		require.NoError(t, err)
	}

	heads := 0
	for _, tb := range e.Tables() {
		if tb.IsHead {
			heads++
		}
	}
	assert.Equal(t, 1, heads)
	assert.Len(t, e.Tables(), MaxTables)
}

func TestDeleteTable(t *testing.T) {
	e := defaultEngine(t)
	g := seatGuest(t, e, "Anna", "t5_c1")

	err := e.DeleteTable("t5", false)
	ce, ok := NeedsConfirmation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"t5"}, ce.TableIDs)
	assert.Len(t, e.Tables(), 13)

	require.NoError(t, e.DeleteTable("t5", true))
	assert.Len(t, e.Tables(), 12)
	got, _ := e.Guest(g.ID)
	assert.False(t, got.Assigned())

	assert.ErrorIs(t, e.DeleteTable("nope", true), ErrTableNotFound)

	e.CreateDefaultLayout(MinTables, domain.ModeLess)
	assert.ErrorIs(t, e.DeleteTable("t2", true), ErrTableLimit)
}

func TestUpdateTableRotation(t *testing.T) {
	e := defaultEngine(t)
	rot := 270.0

	tb, err := e.UpdateTable("t2", TableUpdate{Rotation: &rot}, false)
	require.NoError(t, err)
	assert.Equal(t, 90.0, tb.Rotation)
	assert.Equal(t, domain.Vertical, tb.Orientation())
	require.Len(t, tb.Chairs, 6)
	for _, c := range tb.Chairs {
		assert.Contains(t, []domain.Side{domain.SideLeft, domain.SideRight}, c.Side)
	}
}

func TestUpdateTableRejectsBlockedRotation(t *testing.T) {
	s := rowSnapshot(3, 8, 14)
	s.Tables[1].X, s.Tables[1].Y = 8, 4.4
	e := newTestEngine()
	require.NoError(t, e.Load(s))
	before := e.Snapshot()
	rot := 90.0

	_, err := e.UpdateTable("t1", TableUpdate{Rotation: &rot}, true)
	var pe PlacementError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ReasonTableCollision, pe.Reason)
	assert.Equal(t, before, e.Snapshot())
}

func TestUpdateTableHeadSeatsNeedConfirmation(t *testing.T) {
	e := defaultEngine(t)
	g := seatGuest(t, e, "Prezes", "t1_c4")
	two := 2

	_, err := e.UpdateTable("t1", TableUpdate{HeadSeatCount: &two}, false)
	ce, ok := NeedsConfirmation(err)
	require.True(t, ok)
	assert.Equal(t, []string{g.ID}, ce.GuestIDs)
	tb, _ := e.Table("t1")
	assert.Len(t, tb.Chairs, 4)

	tb, err = e.UpdateTable("t1", TableUpdate{HeadSeatCount: &two}, true)
	require.NoError(t, err)
	assert.Len(t, tb.Chairs, 2)
	got, _ := e.Guest(g.ID)
	assert.False(t, got.Assigned())
	assertBijection(t, e)
}

func TestUpdateTableDescriptionAndHead(t *testing.T) {
	e := defaultEngine(t)
	desc := "  Rodzina  "
	head := true
	three := 3

	tb, err := e.UpdateTable("t4", TableUpdate{Description: &desc, IsHead: &head, HeadSeatCount: &three}, false)
	require.NoError(t, err)
	assert.Equal(t, "Rodzina", tb.Description)
	assert.Equal(t, "Stół 4: Rodzina", tb.Label())
	assert.True(t, tb.IsHead)
	assert.Len(t, tb.Chairs, 3)

	_, err = e.UpdateTable("missing", TableUpdate{}, false)
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestUpdateTableRefusesSnapOntoPillar(t *testing.T) {
	s := rowSnapshot(6.2, 10, 12.3)
	s.Tables[1].Y = 5.9
	s.Tables[1].Rotation = 90
	e := newTestEngine()
	require.NoError(t, e.Load(s))
	require.True(t, e.ValidateLayout().Valid)
	before := e.Snapshot()
	rot := 0.0

	_, err := e.UpdateTable("t2", TableUpdate{Rotation: &rot}, true)

	var pe PlacementError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ReasonPillarHit, pe.Reason)
	assert.Equal(t, before, e.Snapshot())
	assert.True(t, e.ValidateLayout().Valid)
}

func TestSideBySidePairSharesOneSeatRun(t *testing.T) {
	s := rowSnapshot(3, 8, 8)
	s.Tables[1].Y = 4
	e := newTestEngine()
	require.NoError(t, e.Load(s))

	t1, _ := e.Table("t1")
	t2, _ := e.Table("t2")
	require.Equal(t, t1.GroupID, t2.GroupID)

	// One table length of span gives one slot: three seats per long side.
	assert.Equal(t, 6, len(t1.Chairs)+len(t2.Chairs))
	for _, c := range t1.Chairs {
		assert.Equal(t, domain.SideBottom, c.Side)
	}
	for _, c := range t2.Chairs {
		assert.Equal(t, domain.SideTop, c.Side)
	}
}

func TestFreeSpotScan(t *testing.T) {
	assert.Equal(t, 23, scanSteps(scanMinX, scanMaxX))
	assert.Equal(t, 16, scanSteps(scanMinY, scanMaxY))

	e := newTestEngine()
	p, ok := e.findFreeSpot(nil)
	require.True(t, ok)
	assert.Equal(t, geometry.Point{X: 11.5, Y: 1.5}, p)
}
