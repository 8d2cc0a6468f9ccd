package types

import (
	"fmt"
	"strconv"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common"
)

const (
	EventAdvanceEpochType = "advance_epoch"
	EventRegisterType     = "register"
	EventFileReportType   = "file_report"
	EventSubmitReviewType = "submit_review"
	EventTransferType     = "transfer"
)

type EventAdvanceEpoch struct {
	Caller Identity `json:"caller"`
	Epoch  uint64   `json:"epoch"`
}

func EncodeEventAdvanceEpoch(event *EventAdvanceEpoch) abci.Event {
	return abci.Event{
		Type: EventAdvanceEpochType,
		Attributes: []abci.EventAttribute{
			{Key: "caller", Value: event.Caller.Hex(), Index: true},
			{Key: "epoch", Value: fmt.Sprintf("%v", event.Epoch), Index: true},
		},
	}
}

func DecodeEventAdvanceEpoch(originEvent abci.Event) *EventAdvanceEpoch {
	event := &EventAdvanceEpoch{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "caller":
			event.Caller = common.HexToAddress(v.Value)
		case "epoch":
			epoch, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Epoch = epoch
		}
	}
	return event
}

type EventRegister struct {
	Researcher Identity `json:"researcher"`
	Amount     uint64   `json:"amount"`
	Epoch      uint64   `json:"epoch"`
	PoolTotal  uint64   `json:"poolTotal"`
}

func EncodeEventRegister(event *EventRegister) abci.Event {
	return abci.Event{
		Type: EventRegisterType,
		Attributes: []abci.EventAttribute{
			{Key: "researcher", Value: event.Researcher.Hex(), Index: true},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
			{Key: "epoch", Value: fmt.Sprintf("%v", event.Epoch), Index: false},
			{Key: "poolTotal", Value: fmt.Sprintf("%v", event.PoolTotal), Index: false},
		},
	}
}

func DecodeEventRegister(originEvent abci.Event) *EventRegister {
	event := &EventRegister{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "researcher":
			event.Researcher = common.HexToAddress(v.Value)
		case "amount":
			amount, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Amount = amount
		case "epoch":
			epoch, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Epoch = epoch
		case "poolTotal":
			total, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.PoolTotal = total
		}
	}
	return event
}

type EventFileReport struct {
	Report              uint64   `json:"report"`
	Filer               Identity `json:"filer"`
	Reporter            Identity `json:"reporter"`
	RequestedBounty     uint64   `json:"requestedBounty"`
	FiledEpoch          uint64   `json:"filedEpoch"`
	ReviewDeadlineEpoch uint64   `json:"reviewDeadlineEpoch"`
}

func EncodeEventFileReport(event *EventFileReport) abci.Event {
	return abci.Event{
		Type: EventFileReportType,
		Attributes: []abci.EventAttribute{
			{Key: "report", Value: fmt.Sprintf("%v", event.Report), Index: true},
			{Key: "filer", Value: event.Filer.Hex(), Index: true},
			{Key: "reporter", Value: event.Reporter.Hex(), Index: true},
			{Key: "bounty", Value: fmt.Sprintf("%v", event.RequestedBounty), Index: false},
			{Key: "filedEpoch", Value: fmt.Sprintf("%v", event.FiledEpoch), Index: false},
			{Key: "deadline", Value: fmt.Sprintf("%v", event.ReviewDeadlineEpoch), Index: false},
		},
	}
}

func DecodeEventFileReport(originEvent abci.Event) *EventFileReport {
	event := &EventFileReport{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "report":
			report, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Report = report
		case "filer":
			event.Filer = common.HexToAddress(v.Value)
		case "reporter":
			event.Reporter = common.HexToAddress(v.Value)
		case "bounty":
			bounty, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.RequestedBounty = bounty
		case "filedEpoch":
			epoch, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.FiledEpoch = epoch
		case "deadline":
			deadline, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.ReviewDeadlineEpoch = deadline
		}
	}
	return event
}

type EventSubmitReview struct {
	Reviewer      Identity `json:"reviewer"`
	Report        uint64   `json:"report"`
	Approve       bool     `json:"approve"`
	ReviewCount   uint64   `json:"reviewCount"`
	ApprovalCount uint64   `json:"approvalCount"`
	Epoch         uint64   `json:"epoch"`
}

func EncodeEventSubmitReview(event *EventSubmitReview) abci.Event {
	return abci.Event{
		Type: EventSubmitReviewType,
		Attributes: []abci.EventAttribute{
			{Key: "reviewer", Value: event.Reviewer.Hex(), Index: true},
			{Key: "report", Value: fmt.Sprintf("%v", event.Report), Index: true},
			{Key: "approve", Value: fmt.Sprintf("%v", event.Approve), Index: false},
			{Key: "reviewCount", Value: fmt.Sprintf("%v", event.ReviewCount), Index: false},
			{Key: "approvalCount", Value: fmt.Sprintf("%v", event.ApprovalCount), Index: false},
			{Key: "epoch", Value: fmt.Sprintf("%v", event.Epoch), Index: false},
		},
	}
}

func DecodeEventSubmitReview(originEvent abci.Event) *EventSubmitReview {
	event := &EventSubmitReview{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "reviewer":
			event.Reviewer = common.HexToAddress(v.Value)
		case "report":
			report, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Report = report
		case "approve":
			approve, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.Approve = approve
		case "reviewCount":
			cnt, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.ReviewCount = cnt
		case "approvalCount":
			cnt, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.ApprovalCount = cnt
		case "epoch":
			epoch, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Epoch = epoch
		}
	}
	return event
}

type EventTransfer struct {
	From   Identity `json:"from"`
	To     Identity `json:"to"`
	Amount uint64   `json:"amount"`
}

func EncodeEventTransfer(event *EventTransfer) abci.Event {
	return abci.Event{
		Type: EventTransferType,
		Attributes: []abci.EventAttribute{
			{Key: "from", Value: event.From.Hex(), Index: true},
			{Key: "to", Value: event.To.Hex(), Index: true},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
		},
	}
}

func DecodeEventTransfer(originEvent abci.Event) *EventTransfer {
	event := &EventTransfer{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "from":
			event.From = common.HexToAddress(v.Value)
		case "to":
			event.To = common.HexToAddress(v.Value)
		case "amount":
			amount, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Amount = amount
		}
	}
	return event
}
