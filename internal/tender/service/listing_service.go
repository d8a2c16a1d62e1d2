package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/johnsondatabase/tender-sub001/internal/tender/entity"
	"github.com/johnsondatabase/tender-sub001/internal/tender/notify"
	"github.com/johnsondatabase/tender-sub001/internal/tender/repository"
	"github.com/johnsondatabase/tender-sub001/internal/tender/sse"
	"github.com/johnsondatabase/tender-sub001/internal/tender/store"
)

// ListingService is the editor workflow behind the create/update modal:
// upsert the parent by code, replace the child set wholesale, audit the
// diff, notify admins on manual creation, push the realtime invalidation and
// refresh the caches.
type ListingService struct {
	repos    *repository.Repositories
	store    *store.Store
	hub      *sse.Hub
	notifier *notify.Notifier
	log      *zap.Logger
}

func NewListingService(repos *repository.Repositories, st *store.Store, hub *sse.Hub, notifier *notify.Notifier, log *zap.Logger) *ListingService {
	return &ListingService{
		repos:    repos,
		store:    st,
		hub:      hub,
		notifier: notifier,
		log:      log,
	}
}

// LineItemInput is one editable row of the material list.
type LineItemInput struct {
	MaterialCode string  `json:"material_code" binding:"required"`
	MaterialName string  `json:"material_name"`
	Unit         string  `json:"unit"`
	UnitPrice    float64 `json:"unit_price"`
	Quota        float64 `json:"quota"`
	WonQuantity  *float64 `json:"won_quantity,omitempty"` // nil mirrors quota
}

// SaveListingRequest is the full editor form.
type SaveListingRequest struct {
	Code         string     `json:"code" binding:"required"`
	Year         int        `json:"year"`
	HospitalName string     `json:"hospital_name" binding:"required"`
	Province     string     `json:"province"`
	Region       string     `json:"region"`
	Type         string     `json:"type"`
	Distributor  string     `json:"distributor"`
	Industry     string     `json:"industry"`
	SalesRep     string     `json:"sales_rep"`
	Manager      string     `json:"manager"`
	Status       string     `json:"status"`
	CreatedDate  *time.Time `json:"created_date"`
	SignedDate   *time.Time `json:"signed_date"`
	EndDate      *time.Time `json:"end_date"`

	AttachedFiles []entity.AttachedFile `json:"attached_files"`
	LineItems     []LineItemInput       `json:"line_items"`
}

// Snapshot serializes the form for the editor's unsaved-changes check: the
// client takes one at open time and compares against the current state
// before discarding.
func Snapshot(req *SaveListingRequest) string {
	b, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return string(b)
}

// SnapshotFor rebuilds the editor form from a stored listing and serializes
// it. The read endpoint hands this to the client as its open-time snapshot;
// an equal snapshot at close time means the form can be discarded without a
// confirmation prompt.
func SnapshotFor(listing *entity.TenderListing, items []entity.LineItem) string {
	req := &SaveListingRequest{
		Code:         listing.Code,
		Year:         listing.Year,
		HospitalName: listing.HospitalName,
		Province:     listing.Province,
		Region:       listing.Region,
		Type:         listing.Type,
		Distributor:  listing.Distributor,
		Industry:     listing.Industry,
		SalesRep:     listing.SalesRep,
		Manager:      listing.Manager,
		Status:       listing.Status,
		CreatedDate:  listing.CreatedDate,
		SignedDate:   listing.SignedDate,
		EndDate:      listing.EndDate,
	}
	if len(listing.AttachedFiles) > 0 {
		if b, err := json.Marshal(listing.AttachedFiles); err == nil {
			json.Unmarshal(b, &req.AttachedFiles)
		}
	}
	for _, it := range items {
		won := it.WonQuantity
		req.LineItems = append(req.LineItems, LineItemInput{
			MaterialCode: it.MaterialCode,
			MaterialName: it.MaterialName,
			Unit:         it.Unit,
			UnitPrice:    it.UnitPrice,
			Quota:        it.Quota,
			WonQuantity:  &won,
		})
	}
	return Snapshot(req)
}

func (req *SaveListingRequest) toListing() *entity.TenderListing {
	status := req.Status
	switch status {
	case entity.StatusWaiting, entity.StatusWin, entity.StatusFail:
	default:
		status = entity.StatusWaiting
	}
	var files entity.JSONBArray
	for _, f := range req.AttachedFiles {
		files = append(files, map[string]interface{}{
			"name": f.Name, "url": f.URL, "type": f.Type, "size": f.Size,
		})
	}
	return &entity.TenderListing{
		Code:          req.Code,
		Year:          req.Year,
		HospitalName:  req.HospitalName,
		Province:      req.Province,
		Region:        req.Region,
		Type:          req.Type,
		Distributor:   req.Distributor,
		Industry:      req.Industry,
		SalesRep:      req.SalesRep,
		Manager:       req.Manager,
		Status:        status,
		CreatedDate:   req.CreatedDate,
		SignedDate:    req.SignedDate,
		EndDate:       req.EndDate,
		AttachedFiles: files,
	}
}

func (req *SaveListingRequest) toLineItems(parent *entity.TenderListing) []entity.LineItem {
	items := make([]entity.LineItem, 0, len(req.LineItems))
	for _, in := range req.LineItems {
		won := in.Quota
		if in.WonQuantity != nil {
			won = *in.WonQuantity
		}
		items = append(items, entity.LineItem{
			Code:         parent.Code,
			MaterialCode: in.MaterialCode,
			MaterialName: in.MaterialName,
			Unit:         in.Unit,
			UnitPrice:    in.UnitPrice,
			Quota:        in.Quota,
			WonQuantity:  won,
			Status:       parent.Status,
			HospitalName: parent.HospitalName,
			Province:     parent.Province,
			Region:       parent.Region,
			CreatedDate:  parent.CreatedDate,
			SignedDate:   parent.SignedDate,
			EndDate:      parent.EndDate,
		})
	}
	return items
}

// Save runs the full editor save. The child rewrite is deliberately not
// transactional with the parent upsert: a child failure leaves the parent
// committed and is surfaced as a warning for the audit trail / next refetch
// to reconcile.
func (s *ListingService) Save(ctx context.Context, operatorID, operatorName string, req *SaveListingRequest) (*entity.TenderListing, error) {
	prev, err := s.repos.Listing.FindByCode(ctx, req.Code)
	if err != nil && err != repository.ErrNotFound {
		return nil, fmt.Errorf("load existing listing: %w", err)
	}
	var prevItems []entity.LineItem
	if prev != nil {
		if prevItems, err = s.repos.LineItem.ListByCode(ctx, req.Code); err != nil {
			return nil, fmt.Errorf("load existing line items: %w", err)
		}
	}

	listing := req.toListing()
	listing.CreatedBy = operatorID
	items := req.toLineItems(listing)
	diff := computeDiff(prev, prevItems, listing, items)

	created, err := s.repos.Listing.Upsert(ctx, listing)
	if err != nil {
		return nil, fmt.Errorf("save listing: %w", err)
	}

	if err := s.repos.LineItem.ReplaceForCode(ctx, listing.Code, items); err != nil {
		// At-least-once policy: the parent write stands, operators correct
		// via the audit trail and the next refetch.
		s.log.Warn("Line item rewrite failed after parent save",
			zap.String("code", listing.Code), zap.Error(err))
	}

	action := "update"
	if created {
		action = "create"
	}
	if created || !diff.Empty() {
		audit := &entity.AuditLog{
			Code:         listing.Code,
			Action:       action,
			ToStatus:     listing.Status,
			Content:      diff.Text(),
			OperatorID:   operatorID,
			OperatorName: operatorName,
			CreatedAt:    time.Now(),
		}
		if err := s.repos.AuditLog.Create(ctx, audit); err != nil {
			s.log.Warn("Audit write failed", zap.String("code", listing.Code), zap.Error(err))
		}
	}

	if created {
		s.notifier.NotifyAdmins(
			"Tender created",
			fmt.Sprintf("%s created tender %s (%s)", operatorName, listing.Code, listing.HospitalName),
			map[string]interface{}{"code": listing.Code, "hospital": listing.HospitalName},
		)
	}

	s.hub.PublishListingUpdate(listing.Code, action)
	s.hub.PublishLineItemUpdate(listing.Code)
	s.refresh(ctx)
	return listing, nil
}

// Delete removes a tender and its children. Only allowed from the fail
// lane.
func (s *ListingService) Delete(ctx context.Context, operatorID, operatorName, code string) error {
	listing, err := s.repos.Listing.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	if listing.Status != entity.StatusFail {
		return fmt.Errorf("listing %s is not in the fail lane", code)
	}

	if err := s.repos.Listing.DeleteByCode(ctx, code); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if err := s.repos.LineItem.DeleteByCode(ctx, code); err != nil {
		s.log.Warn("Line item delete failed after parent delete",
			zap.String("code", code), zap.Error(err))
	}

	audit := &entity.AuditLog{
		Code:         code,
		Action:       "delete",
		FromStatus:   listing.Status,
		OperatorID:   operatorID,
		OperatorName: operatorName,
		CreatedAt:    time.Now(),
	}
	if err := s.repos.AuditLog.Create(ctx, audit); err != nil {
		s.log.Warn("Audit write failed", zap.String("code", code), zap.Error(err))
	}

	s.hub.PublishListingUpdate(code, "deleted")
	s.refresh(ctx)
	return nil
}

// Get loads one listing with its line items for the editor.
func (s *ListingService) Get(ctx context.Context, code string) (*entity.TenderListing, []entity.LineItem, error) {
	listing, err := s.repos.Listing.FindByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repos.LineItem.ListByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	return listing, items, nil
}

// History returns the audit trail of one tender.
func (s *ListingService) History(ctx context.Context, code string, page, pageSize int) ([]entity.AuditLog, int64, error) {
	return s.repos.AuditLog.ListByCode(ctx, code, page, pageSize)
}

func (s *ListingService) refresh(ctx context.Context) {
	if err := s.store.RefreshListings(ctx); err != nil {
		s.log.Warn("Listing cache refresh failed", zap.Error(err))
	}
	if err := s.store.RefreshLineItems(ctx); err != nil {
		s.log.Warn("Line item cache refresh failed", zap.Error(err))
	}
}
