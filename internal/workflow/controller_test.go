package workflow

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raseedhq/raseed/internal/receipt"
)

func sampleExtraction() receipt.RawExtraction {
	return receipt.RawExtraction{
		TypeOfPurchase:    "Restaurant",
		EstablishmentName: "Cafe Madras",
		Date:              "2025-08-01",
		Total:             json.RawMessage(`"318"`),
		Items: []receipt.RawExtractionItem{
			{ItemName: "Idli", Price: json.RawMessage(`"45"`), Quantity: json.RawMessage(`2`)},
		},
	}
}

func TestExtractFlow(t *testing.T) {
	c := New()
	require.Equal(t, PhaseEmpty, c.Phase())

	run, err := c.BeginExtract("/tmp/bill.jpg")
	require.NoError(t, err)
	assert.Equal(t, PhaseExtracting, c.Phase())

	applied := c.ApplyExtract(run, sampleExtraction(), nil)
	require.True(t, applied)
	assert.Equal(t, PhaseDraft, c.Phase())

	d := c.Draft()
	assert.Equal(t, receipt.PurchaseRestaurant, d.Type)
	assert.Equal(t, "Cafe Madras", d.EstablishmentName)
	require.Len(t, d.Items, 1)
	assert.Equal(t, receipt.DraftItem{Name: "Idli", Price: "45", Quantity: "2"}, d.Items[0])
}

func TestBeginExtractRequiresImage(t *testing.T) {
	c := New()

	_, err := c.BeginExtract("   ")
	require.ErrorIs(t, err, ErrNoImage)
	assert.Equal(t, PhaseEmpty, c.Phase(), "validation failures change nothing")
}

func TestBeginExtractWhileBusy(t *testing.T) {
	c := New()

	_, err := c.BeginExtract("/tmp/bill.jpg")
	require.NoError(t, err)

	_, err = c.BeginExtract("/tmp/other.jpg")
	require.ErrorIs(t, err, ErrBusy)
}

func TestExtractFailureReturnsToEmpty(t *testing.T) {
	c := New()

	run, err := c.BeginExtract("/tmp/bill.jpg")
	require.NoError(t, err)

	applied := c.ApplyExtract(run, receipt.RawExtraction{}, errors.New("boom"))
	require.True(t, applied)
	assert.Equal(t, PhaseEmpty, c.Phase())
	assert.False(t, c.HasDraft())
}

func TestStaleExtractIgnored(t *testing.T) {
	c := New()

	run, err := c.BeginExtract("/tmp/bill.jpg")
	require.NoError(t, err)

	c.Reset()

	applied := c.ApplyExtract(run, sampleExtraction(), nil)
	assert.False(t, applied, "results from before a reset never land")
	assert.Equal(t, PhaseEmpty, c.Phase())
}

func TestManualDraft(t *testing.T) {
	c := New()

	require.NoError(t, c.NewManualDraft())
	assert.Equal(t, PhaseDraft, c.Phase())
	assert.Equal(t, receipt.PurchaseRetail, c.Draft().Type)
	assert.Empty(t, c.Draft().Items)
}

func TestDraftEditing(t *testing.T) {
	c := New()
	require.NoError(t, c.NewManualDraft())

	require.NoError(t, c.EditEstablishment("DMart"))
	require.NoError(t, c.EditDate("2025-08-02"))
	require.NoError(t, c.EditTotal("1240"))
	require.NoError(t, c.EditType(receipt.PurchaseOther))

	require.NoError(t, c.AddItem())
	require.NoError(t, c.EditItemName(0, "Rice"))
	require.NoError(t, c.EditItemPrice(0, "640"))
	require.NoError(t, c.EditItemQuantity(0, "2"))

	d := c.Draft()
	assert.Equal(t, "DMart", d.EstablishmentName)
	assert.Equal(t, receipt.PurchaseOther, d.Type)
	require.Len(t, d.Items, 1)
	assert.Equal(t, receipt.DraftItem{Name: "Rice", Price: "640", Quantity: "2"}, d.Items[0])

	assert.Equal(t, "1280", c.RunningTotal().String())

	require.NoError(t, c.RemoveItem(0))
	assert.Empty(t, c.Draft().Items)
	assert.Equal(t, "0", c.RunningTotal().String())
}

func TestEditsRequireDraft(t *testing.T) {
	c := New()

	require.ErrorIs(t, c.EditEstablishment("DMart"), ErrNoDraft)
	require.ErrorIs(t, c.AddItem(), ErrNoDraft)
	require.ErrorIs(t, c.EditItemName(0, "x"), ErrNoDraft)
}

func TestItemIndexOutOfRange(t *testing.T) {
	c := New()
	require.NoError(t, c.NewManualDraft())

	require.Error(t, c.EditItemName(0, "x"))
	require.Error(t, c.RemoveItem(-1))
}

func TestCycleType(t *testing.T) {
	c := New()
	require.NoError(t, c.NewManualDraft())

	require.NoError(t, c.CycleType())
	assert.Equal(t, receipt.PurchaseOther, c.Draft().Type)

	require.NoError(t, c.CycleType())
	assert.Equal(t, receipt.PurchaseRestaurant, c.Draft().Type)

	require.NoError(t, c.CycleType())
	assert.Equal(t, receipt.PurchaseRetail, c.Draft().Type)
}

func TestSaveFlow(t *testing.T) {
	c := New()
	require.NoError(t, c.NewManualDraft())
	require.NoError(t, c.EditEstablishment("DMart"))
	require.NoError(t, c.AddItem())
	require.NoError(t, c.EditItemPrice(0, "99.5"))

	run, payload, err := c.BeginSave()
	require.NoError(t, err)
	assert.Equal(t, PhaseSaving, c.Phase())
	assert.Equal(t, "DMart", payload.EstablishmentName)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "Unknown item", payload.Items[0].Name)

	applied := c.ApplySave(run, nil)
	require.True(t, applied)
	assert.Equal(t, PhaseEmpty, c.Phase())
	assert.False(t, c.HasDraft())
}

func TestSaveRequiresEstablishment(t *testing.T) {
	c := New()
	require.NoError(t, c.NewManualDraft())
	require.NoError(t, c.EditEstablishment("   "))

	_, _, err := c.BeginSave()
	require.ErrorIs(t, err, ErrNoEstablishment)
	assert.Equal(t, PhaseDraft, c.Phase(), "the draft stays open")
}

func TestSaveFailureReopensDraft(t *testing.T) {
	c := New()
	require.NoError(t, c.NewManualDraft())
	require.NoError(t, c.EditEstablishment("DMart"))
	require.NoError(t, c.EditTotal("1240"))

	run, _, err := c.BeginSave()
	require.NoError(t, err)

	applied := c.ApplySave(run, errors.New("backend down"))
	require.True(t, applied)

	assert.Equal(t, PhaseDraft, c.Phase())
	assert.Equal(t, "DMart", c.Draft().EstablishmentName, "edits survive a failed save")
	assert.Equal(t, "1240", c.Draft().Total)
}

func TestEditsBlockedWhileSaving(t *testing.T) {
	c := New()
	require.NoError(t, c.NewManualDraft())
	require.NoError(t, c.EditEstablishment("DMart"))

	_, _, err := c.BeginSave()
	require.NoError(t, err)

	require.ErrorIs(t, c.EditEstablishment("Other"), ErrNoDraft)

	_, _, err = c.BeginSave()
	require.ErrorIs(t, err, ErrBusy)

	_, err = c.BeginExtract("/tmp/bill.jpg")
	require.ErrorIs(t, err, ErrBusy)
}

func TestStaleSaveIgnored(t *testing.T) {
	c := New()
	require.NoError(t, c.NewManualDraft())
	require.NoError(t, c.EditEstablishment("DMart"))

	run, _, err := c.BeginSave()
	require.NoError(t, err)

	c.Reset()
	require.NoError(t, c.NewManualDraft())

	applied := c.ApplySave(run, nil)
	assert.False(t, applied)
	assert.Equal(t, PhaseDraft, c.Phase(), "the new draft is untouched")
}

func TestListRefresh(t *testing.T) {
	c := New()
	assert.False(t, c.ListLoaded())

	run := c.BeginRefresh()
	applied := c.ApplyList(run, []receipt.Receipt{{ID: "rcpt-1"}}, nil)
	require.True(t, applied)

	assert.True(t, c.ListLoaded())
	require.Len(t, c.Receipts(), 1)
	require.NoError(t, c.ListError())
}

func TestListRefreshFailureKeepsPreviousList(t *testing.T) {
	c := New()

	run := c.BeginRefresh()
	require.True(t, c.ApplyList(run, []receipt.Receipt{{ID: "rcpt-1"}}, nil))

	run = c.BeginRefresh()
	require.True(t, c.ApplyList(run, nil, errors.New("backend down")))

	require.Len(t, c.Receipts(), 1, "the stale list survives a failed refresh")
	assert.Equal(t, "rcpt-1", c.Receipts()[0].ID)
	require.Error(t, c.ListError(), "the failure is distinguishable from an empty list")

	run = c.BeginRefresh()
	require.True(t, c.ApplyList(run, []receipt.Receipt{}, nil))
	require.NoError(t, c.ListError(), "a later success clears the error")
	assert.Empty(t, c.Receipts())
}

func TestListReplacedWholesale(t *testing.T) {
	c := New()

	run := c.BeginRefresh()
	require.True(t, c.ApplyList(run, []receipt.Receipt{{ID: "a"}, {ID: "b"}}, nil))

	run = c.BeginRefresh()
	require.True(t, c.ApplyList(run, []receipt.Receipt{{ID: "c"}}, nil))

	require.Len(t, c.Receipts(), 1)
	assert.Equal(t, "c", c.Receipts()[0].ID)
}

func TestOverlappingRefreshesOnlyNewestLands(t *testing.T) {
	c := New()

	first := c.BeginRefresh()
	second := c.BeginRefresh()

	require.True(t, c.ApplyList(second, []receipt.Receipt{{ID: "new"}}, nil))
	assert.False(t, c.ApplyList(first, []receipt.Receipt{{ID: "old"}}, nil))

	require.Len(t, c.Receipts(), 1)
	assert.Equal(t, "new", c.Receipts()[0].ID)
}

func TestListRunsIndependentOfDraftRuns(t *testing.T) {
	c := New()

	extractRun, err := c.BeginExtract("/tmp/bill.jpg")
	require.NoError(t, err)

	listRun := c.BeginRefresh()
	require.True(t, c.ApplyList(listRun, []receipt.Receipt{{ID: "rcpt-1"}}, nil))

	require.True(t, c.ApplyExtract(extractRun, sampleExtraction(), nil), "a list refresh does not invalidate the extract run")
	assert.Equal(t, PhaseDraft, c.Phase())
}

func TestReset(t *testing.T) {
	c := New()
	require.NoError(t, c.NewManualDraft())
	require.NoError(t, c.EditEstablishment("DMart"))

	listRun := c.BeginRefresh()
	require.True(t, c.ApplyList(listRun, []receipt.Receipt{{ID: "rcpt-1"}}, nil))

	c.Reset()

	assert.Equal(t, PhaseEmpty, c.Phase())
	assert.Empty(t, c.Receipts())
	assert.False(t, c.ListLoaded())
	require.NoError(t, c.ListError())
}

func TestReceiptByIndex(t *testing.T) {
	c := New()

	run := c.BeginRefresh()
	require.True(t, c.ApplyList(run, []receipt.Receipt{{ID: "rcpt-1"}}, nil))

	r, err := c.Receipt(0)
	require.NoError(t, err)
	assert.Equal(t, "rcpt-1", r.ID)

	_, err = c.Receipt(1)
	require.Error(t, err)
}

func TestReceiptsReturnsCopy(t *testing.T) {
	c := New()

	run := c.BeginRefresh()
	require.True(t, c.ApplyList(run, []receipt.Receipt{{ID: "rcpt-1"}}, nil))

	list := c.Receipts()
	list[0].ID = "mutated"

	assert.Equal(t, "rcpt-1", c.Receipts()[0].ID, "callers cannot reach the cached list")
}

func TestDraftReturnsCopy(t *testing.T) {
	c := New()
	require.NoError(t, c.NewManualDraft())
	require.NoError(t, c.AddItem())

	d := c.Draft()
	d.Items[0].Name = "mutated"

	assert.Empty(t, c.Draft().Items[0].Name, "callers cannot reach the held draft")
}
