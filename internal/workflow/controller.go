// Package workflow owns the receipt-in-progress state machine and the
// cached receipt list. A Controller belongs to the UI update loop:
// Begin methods hand out run tokens before a request starts, Apply
// methods take results back and discard any whose token has been
// superseded. The draft and the list carry independent token
// sequences, so a list refresh never invalidates an in-flight save.
package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/raseedhq/raseed/internal/receipt"
)

// Phase is where the receipt under construction stands.
type Phase int

const (
	// PhaseEmpty means no receipt is in progress.
	PhaseEmpty Phase = iota
	// PhaseExtracting means an uploaded image is being read.
	PhaseExtracting
	// PhaseDraft means a draft is open for editing.
	PhaseDraft
	// PhaseSaving means the draft is on its way to the backend.
	PhaseSaving
)

var (
	// ErrNoImage means extraction was requested without a file.
	ErrNoImage = errors.New("no receipt image selected")

	// ErrNoEstablishment means save was requested before the one
	// mandatory field was filled in.
	ErrNoEstablishment = errors.New("establishment name is required")

	// ErrBusy means a draft operation is already in flight.
	ErrBusy = errors.New("another receipt operation is in progress")

	// ErrNoDraft means an edit or save arrived with no open draft.
	ErrNoDraft = errors.New("no draft receipt to edit")
)

// Controller tracks one draft and the receipt list.
type Controller struct {
	phase Phase
	draft receipt.Draft

	draftRun uint64
	listRun  uint64

	receipts   []receipt.Receipt
	listLoaded bool
	listErr    error
}

func New() *Controller {
	return &Controller{}
}

func (c *Controller) Phase() Phase {
	return c.phase
}

// HasDraft reports whether a draft exists, editing or saving.
func (c *Controller) HasDraft() bool {
	return c.phase == PhaseDraft || c.phase == PhaseSaving
}

// Draft returns a copy of the draft under construction.
func (c *Controller) Draft() receipt.Draft {
	d := c.draft
	d.Items = append([]receipt.DraftItem(nil), c.draft.Items...)

	return d
}

// BeginExtract starts an extraction run for the image at path,
// replacing whatever draft existed. The returned token must come back
// through ApplyExtract.
func (c *Controller) BeginExtract(path string) (uint64, error) {
	if strings.TrimSpace(path) == "" {
		return 0, ErrNoImage
	}

	if c.phase == PhaseExtracting || c.phase == PhaseSaving {
		return 0, ErrBusy
	}

	c.phase = PhaseExtracting
	c.draft = receipt.Draft{}
	c.draftRun++

	return c.draftRun, nil
}

// ApplyExtract lands an extraction result, reporting whether it was
// current. Failure returns the workflow to empty; success opens the
// normalized draft for editing.
func (c *Controller) ApplyExtract(run uint64, raw receipt.RawExtraction, err error) bool {
	if run != c.draftRun || c.phase != PhaseExtracting {
		return false
	}

	if err != nil {
		c.phase = PhaseEmpty
		return true
	}

	c.draft = receipt.Normalize(raw)
	c.phase = PhaseDraft

	return true
}

// NewManualDraft opens an empty draft without an extraction pass,
// replacing whatever draft existed.
func (c *Controller) NewManualDraft() error {
	if c.phase == PhaseExtracting || c.phase == PhaseSaving {
		return ErrBusy
	}

	c.draft = receipt.NewDraft()
	c.phase = PhaseDraft

	return nil
}

func (c *Controller) EditType(t receipt.PurchaseType) error {
	if c.phase != PhaseDraft {
		return ErrNoDraft
	}

	c.draft.Type = t

	return nil
}

// CycleType advances the draft's purchase type to the next valid one.
func (c *Controller) CycleType() error {
	if c.phase != PhaseDraft {
		return ErrNoDraft
	}

	types := receipt.PurchaseTypes()
	for i, t := range types {
		if t == c.draft.Type {
			c.draft.Type = types[(i+1)%len(types)]
			return nil
		}
	}

	c.draft.Type = types[0]

	return nil
}

func (c *Controller) EditEstablishment(v string) error {
	if c.phase != PhaseDraft {
		return ErrNoDraft
	}

	c.draft.EstablishmentName = v

	return nil
}

func (c *Controller) EditDate(v string) error {
	if c.phase != PhaseDraft {
		return ErrNoDraft
	}

	c.draft.Date = v

	return nil
}

func (c *Controller) EditTotal(v string) error {
	if c.phase != PhaseDraft {
		return ErrNoDraft
	}

	c.draft.Total = v

	return nil
}

func (c *Controller) EditItemName(i int, v string) error {
	if err := c.itemCheck(i); err != nil {
		return err
	}

	c.draft.Items[i].Name = v

	return nil
}

func (c *Controller) EditItemPrice(i int, v string) error {
	if err := c.itemCheck(i); err != nil {
		return err
	}

	c.draft.Items[i].Price = v

	return nil
}

func (c *Controller) EditItemQuantity(i int, v string) error {
	if err := c.itemCheck(i); err != nil {
		return err
	}

	c.draft.Items[i].Quantity = v

	return nil
}

// AddItem appends a blank item row with quantity one.
func (c *Controller) AddItem() error {
	if c.phase != PhaseDraft {
		return ErrNoDraft
	}

	c.draft.Items = append(c.draft.Items, receipt.DraftItem{Quantity: "1"})

	return nil
}

// RemoveItem deletes the item at i.
func (c *Controller) RemoveItem(i int) error {
	if err := c.itemCheck(i); err != nil {
		return err
	}

	c.draft.Items = append(c.draft.Items[:i], c.draft.Items[i+1:]...)

	return nil
}

// RunningTotal is the live sum of price times quantity over the
// draft's items, recomputed per call. It is independent of the
// editable Total field.
func (c *Controller) RunningTotal() decimal.Decimal {
	return receipt.RunningTotal(c.draft)
}

// BeginSave validates the draft and starts a save run, returning the
// token and the coerced payload to send. The draft stays held so a
// failed save reopens it intact.
func (c *Controller) BeginSave() (uint64, receipt.SavePayload, error) {
	switch c.phase {
	case PhaseDraft:
	case PhaseSaving:
		return 0, receipt.SavePayload{}, ErrBusy
	default:
		return 0, receipt.SavePayload{}, ErrNoDraft
	}

	if strings.TrimSpace(c.draft.EstablishmentName) == "" {
		return 0, receipt.SavePayload{}, ErrNoEstablishment
	}

	c.phase = PhaseSaving
	c.draftRun++

	return c.draftRun, receipt.BuildSavePayload(c.draft), nil
}

// ApplySave lands a save result, reporting whether it was current.
// Success empties the workflow; failure reopens the same draft for
// another attempt.
func (c *Controller) ApplySave(run uint64, err error) bool {
	if run != c.draftRun || c.phase != PhaseSaving {
		return false
	}

	if err != nil {
		c.phase = PhaseDraft
		return true
	}

	c.draft = receipt.Draft{}
	c.phase = PhaseEmpty

	return true
}

// BeginRefresh starts a list refresh run. Refreshes are independent of
// the draft lifecycle and may overlap it.
func (c *Controller) BeginRefresh() uint64 {
	c.listRun++
	return c.listRun
}

// ApplyList lands a refresh result, reporting whether it was current.
// Success replaces the cached list wholesale; failure keeps the
// previous list and records the error so the UI can tell failed from
// empty.
func (c *Controller) ApplyList(run uint64, receipts []receipt.Receipt, err error) bool {
	if run != c.listRun {
		return false
	}

	if err != nil {
		c.listErr = err
		return true
	}

	c.receipts = receipts
	c.listLoaded = true
	c.listErr = nil

	return true
}

// Receipts returns a copy of the cached list from the last successful
// refresh.
func (c *Controller) Receipts() []receipt.Receipt {
	return append([]receipt.Receipt(nil), c.receipts...)
}

// Receipt returns the cached receipt at i.
func (c *Controller) Receipt(i int) (receipt.Receipt, error) {
	if i < 0 || i >= len(c.receipts) {
		return receipt.Receipt{}, fmt.Errorf("receipt %d out of range", i)
	}

	return c.receipts[i], nil
}

// ListLoaded reports whether any refresh has succeeded yet.
func (c *Controller) ListLoaded() bool {
	return c.listLoaded
}

// ListError returns the error from the most recent failed refresh, or
// nil after a success.
func (c *Controller) ListError() error {
	return c.listErr
}

// Reset wipes the draft, the list and the error state, and bumps both
// token sequences so every outstanding result lands stale.
func (c *Controller) Reset() {
	c.phase = PhaseEmpty
	c.draft = receipt.Draft{}
	c.receipts = nil
	c.listLoaded = false
	c.listErr = nil
	c.draftRun++
	c.listRun++
}

func (c *Controller) itemCheck(i int) error {
	if c.phase != PhaseDraft {
		return ErrNoDraft
	}

	if i < 0 || i >= len(c.draft.Items) {
		return fmt.Errorf("item %d out of range", i)
	}

	return nil
}
