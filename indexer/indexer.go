package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/calehh/bounty-app/types"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDecodeEvent = errors.New("decode event fail")
)

// NodeClient is the part of the cometbft RPC client the indexer reads from.
type NodeClient interface {
	Status(ctx context.Context) (*coretypes.ResultStatus, error)
	BlockResults(ctx context.Context, height *int64) (*coretypes.ResultBlockResults, error)
}

func NewNodeClient(url string) (*comethttp.HTTP, error) {
	return comethttp.New(url, "/websocket")
}

type ChainIndexer struct {
	logger        cmtlog.Logger
	Height        int64
	db            *gorm.DB
	cli           NodeClient
	interval      time.Duration
	eventHandlers map[string]eventHandler
}

func NewChainIndexer(logger cmtlog.Logger, db *gorm.DB, cli NodeClient, interval time.Duration) (*ChainIndexer, error) {
	h := Height{Id: 1}
	if err := db.First(&h).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if interval <= 0 {
		interval = time.Second
	}
	c := &ChainIndexer{
		logger:   logger.With("module", "indexer"),
		Height:   int64(h.Height + 1),
		db:       db,
		cli:      cli,
		interval: interval,
	}
	c.eventHandlers = map[string]eventHandler{
		types.EventAdvanceEpochType: c.handleEventAdvanceEpoch,
		types.EventRegisterType:     c.handleEventRegister,
		types.EventFileReportType:   c.handleEventFileReport,
		types.EventSubmitReviewType: c.handleEventSubmitReview,
		types.EventTransferType:     c.handleEventTransfer,
	}
	c.logger.Info("indexer created", "height", c.Height)
	return c, nil
}

// Start polls the node until ctx is done.
func (c *ChainIndexer) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Sync(ctx); err != nil {
				c.logger.Error("indexer sync fail", "height", c.Height, "err", err)
			}
		}
	}
}

// Sync indexes every block up to the node's latest height.
func (c *ChainIndexer) Sync(ctx context.Context) error {
	st, err := c.cli.Status(ctx)
	if err != nil {
		return fmt.Errorf("get status: %w", err)
	}
	for st.SyncInfo.LatestBlockHeight >= c.Height {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err = c.IndexBlock(ctx, c.Height)
		if err != nil {
			return err
		}
		c.Height++
	}
	return nil
}

// IndexBlock stores the events of one block together with the sync height.
// Events of failed transactions are skipped.
func (c *ChainIndexer) IndexBlock(ctx context.Context, height int64) error {
	c.logger.Debug("indexer syncing", "height", height)
	res, err := c.cli.BlockResults(ctx, &height)
	if err != nil {
		return fmt.Errorf("get block results %d: %w", height, err)
	}
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range res.TxsResults {
			if r.Code != abci.CodeTypeOK {
				continue
			}
			for _, event := range r.Events {
				if err := c.handleEvent(tx, event, height); err != nil {
					return err
				}
			}
		}
		return tx.Save(&Height{Id: 1, Height: uint64(height)}).Error
	})
}

type eventHandler func(tx *gorm.DB, event abci.Event, height int64) error

func (c *ChainIndexer) handleEvent(tx *gorm.DB, event abci.Event, height int64) error {
	if h, ok := c.eventHandlers[event.Type]; ok {
		return h(tx, event, height)
	}
	return nil
}

func (c *ChainIndexer) handleEventAdvanceEpoch(tx *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventAdvanceEpoch(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event.Type)
		return ErrDecodeEvent
	}
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&EpochAdvance{
		Epoch:  ev.Epoch,
		Caller: ev.Caller.Hex(),
		Height: uint64(height),
	}).Error
}

func (c *ChainIndexer) handleEventRegister(tx *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventRegister(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event.Type)
		return ErrDecodeEvent
	}
	return tx.Save(&Researcher{
		Address:         ev.Researcher.Hex(),
		Staked:          ev.Amount,
		Active:          true,
		RegisteredEpoch: ev.Epoch,
		Height:          uint64(height),
	}).Error
}

func (c *ChainIndexer) handleEventFileReport(tx *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventFileReport(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event.Type)
		return ErrDecodeEvent
	}
	return tx.Save(&Report{
		Id:                  ev.Report,
		Filer:               ev.Filer.Hex(),
		Reporter:            ev.Reporter.Hex(),
		RequestedBounty:     ev.RequestedBounty,
		FiledEpoch:          ev.FiledEpoch,
		ReviewDeadlineEpoch: ev.ReviewDeadlineEpoch,
		Height:              uint64(height),
	}).Error
}

func (c *ChainIndexer) handleEventSubmitReview(tx *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventSubmitReview(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event.Type)
		return ErrDecodeEvent
	}
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&Review{
		Researcher: ev.Reviewer.Hex(),
		Report:     ev.Report,
		Approve:    ev.Approve,
		Epoch:      ev.Epoch,
		Height:     uint64(height),
	}).Error
	if err != nil {
		return err
	}
	return tx.Model(&Report{}).Where("id = ?", ev.Report).Updates(map[string]any{
		"review_count":   ev.ReviewCount,
		"approval_count": ev.ApprovalCount,
	}).Error
}

func (c *ChainIndexer) handleEventTransfer(tx *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventTransfer(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event.Type)
		return ErrDecodeEvent
	}
	return tx.Create(&Transfer{
		Sender:    ev.From.Hex(),
		Recipient: ev.To.Hex(),
		Amount:    ev.Amount,
		Height:    uint64(height),
	}).Error
}

func paginate(page, pageSize int) (offset, limit int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page < 0 {
		page = 0
	}
	return page * pageSize, pageSize
}

func (c *ChainIndexer) getReports(reporter string, page int, pageSize int) ([]Report, uint64, error) {
	q := c.db.Model(&Report{})
	if reporter != "" {
		q = q.Where("reporter = ?", reporter)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := paginate(page, pageSize)
	var reports []Report
	if err := q.Order("id desc").Offset(offset).Limit(limit).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, uint64(total), nil
}

func (c *ChainIndexer) getReportById(id uint64) (*Report, error) {
	var report Report
	err := c.db.Where("id = ?", id).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *ChainIndexer) getReviews(report uint64, researcher string, page int, pageSize int) ([]Review, uint64, error) {
	q := c.db.Model(&Review{})
	if report != 0 {
		q = q.Where("report = ?", report)
	}
	if researcher != "" {
		q = q.Where("researcher = ?", researcher)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := paginate(page, pageSize)
	var reviews []Review
	if err := q.Order("id asc").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, uint64(total), nil
}

func (c *ChainIndexer) getResearchers(address string, page int, pageSize int) ([]Researcher, uint64, error) {
	q := c.db.Model(&Researcher{})
	if address != "" {
		q = q.Where("address = ?", address)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := paginate(page, pageSize)
	var researchers []Researcher
	if err := q.Order("registered_epoch desc, address asc").Offset(offset).Limit(limit).Find(&researchers).Error; err != nil {
		return nil, 0, err
	}
	return researchers, uint64(total), nil
}

func (c *ChainIndexer) getLatestEpoch() (*EpochAdvance, error) {
	var ea EpochAdvance
	err := c.db.Order("epoch desc").First(&ea).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &EpochAdvance{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ea, nil
}

func (c *ChainIndexer) getSyncedHeight() (uint64, error) {
	h := Height{Id: 1}
	err := c.db.First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return h.Height, err
}
