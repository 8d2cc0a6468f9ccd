package state

import (
	"github.com/calehh/bounty-app/types"
)

// FileReport records a claim crediting reporter and opens it for review for
// ReviewWindow epochs. Only active researchers still inside their active
// period may file.
func (s *State) FileReport(caller, reporter types.Identity, bounty uint64) (event *types.EventFileReport, err error) {
	s.logger.Debug("apply file report", "caller", caller.Hex(), "reporter", reporter.Hex(), "bounty", bounty, "epoch", s.header.Epoch)
	r, err := s.GetResearcher(caller)
	if err != nil {
		return nil, err
	}
	if r == nil || !r.Active {
		err = ErrNotAuthorized
		return
	}
	if reporter == s.header.Custodian || reporter == types.BurnIdentity {
		err = ErrInput
		return
	}
	params := s.header.Params
	if bounty == 0 || bounty > params.MaximumBounty {
		err = ErrMinimumNotMet
		return
	}
	if s.header.Epoch-r.RegisteredEpoch > params.ActivePeriod {
		err = ErrReviewExpired
		return
	}
	deadline := s.header.Epoch + params.ReviewWindow
	if deadline < s.header.Epoch {
		err = ErrInput
		return
	}

	report := &types.Report{
		Id:                  s.header.NextReportId,
		Reporter:            reporter,
		RequestedBounty:     bounty,
		FiledEpoch:          s.header.Epoch,
		ReviewDeadlineEpoch: deadline,
	}
	err = s.putReport(report)
	if err != nil {
		return
	}
	s.header.NextReportId += 1
	event = &types.EventFileReport{
		Report:              report.Id,
		Filer:               caller,
		Reporter:            reporter,
		RequestedBounty:     bounty,
		FiledEpoch:          report.FiledEpoch,
		ReviewDeadlineEpoch: report.ReviewDeadlineEpoch,
	}
	return
}

// SubmitReview records caller's one-time vote on a report and updates the
// report's tally. Researcher activity is not rechecked here.
func (s *State) SubmitReview(caller types.Identity, reportId uint64, approve bool) (event *types.EventSubmitReview, err error) {
	s.logger.Debug("apply submit review", "caller", caller.Hex(), "report", reportId, "approve", approve, "epoch", s.header.Epoch)
	report, err := s.GetReport(reportId)
	if err != nil {
		return nil, err
	}
	if report == nil {
		err = ErrBountyUnknown
		return
	}
	r, err := s.GetResearcher(caller)
	if err != nil {
		return nil, err
	}
	if r == nil {
		err = ErrNotAuthorized
		return
	}
	if !report.Open(s.header.Epoch) {
		err = ErrReviewExpired
		return
	}
	prev, err := s.GetReview(caller, reportId)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		err = ErrDuplicateReview
		return
	}

	report.ReviewCount += 1
	if approve {
		report.ApprovalCount += 1
	}
	err = s.putReport(report)
	if err != nil {
		return
	}
	err = s.putReview(&types.Review{
		Researcher: caller,
		Report:     reportId,
		Approve:    approve,
		Submitted:  true,
		Epoch:      s.header.Epoch,
	})
	if err != nil {
		return
	}
	event = &types.EventSubmitReview{
		Reviewer:      caller,
		Report:        reportId,
		Approve:       approve,
		ReviewCount:   report.ReviewCount,
		ApprovalCount: report.ApprovalCount,
		Epoch:         s.header.Epoch,
	}
	return
}
