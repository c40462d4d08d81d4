// Package http implements the REST API for Campus Placement Hub.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/application/command"
	"github.com/campus-hub/campus-placement-hub/internal/application/query"
	"github.com/campus-hub/campus-placement-hub/internal/domain/application"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Campus Placement Hub API",
		"version":     "v1",
		"description": "REST API for Campus Placement Hub - campus recruitment drives end to end",
		"endpoints": map[string]string{
			"health":       "/health",
			"open_windows": "/api/v1/windows/open",
			"applications": "/api/v1/applications",
			"students":     "/api/v1/students",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// Default health response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			w.WriteHeader(http.StatusServiceUnavailable)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleMetrics handles the metrics endpoint.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"uptime_seconds": s.Uptime().Seconds(),
		"running":        s.IsRunning(),
	}

	writeJSON(w, http.StatusOK, metrics)
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// registerStudentRequest is the payload for POST /api/v1/students.
type registerStudentRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Name       string  `json:"name"`
	RollNumber string  `json:"roll_number"`
	Branch     string  `json:"branch"`
	BatchYear  int     `json:"batch_year"`
	CGPA       float64 `json:"cgpa"`
	Backlogs   int     `json:"backlogs"`
}

// handleRegisterStudent handles POST /api/v1/students
func (s *Server) handleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	if s.deps.RegisterStudentHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Student registration not configured")
		return
	}

	var req registerStudentRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cmd := command.RegisterStudentCommand{
		Email:         req.Email,
		Password:      req.Password,
		Name:          req.Name,
		RollNumber:    req.RollNumber,
		Branch:        req.Branch,
		BatchYear:     req.BatchYear,
		CGPA:          req.CGPA,
		Backlogs:      req.Backlogs,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.RegisterStudentHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to register student", logger.Err(err))
		s.writeDomainError(w, err, "Failed to register student")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// OPENING & WINDOW HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// criteriaRequest mirrors command.CriteriaInput on the wire. Absent fields
// mean "unrestricted".
type criteriaRequest struct {
	MinCGPA     *float64 `json:"min_cgpa,omitempty"`
	MaxBacklogs *int     `json:"max_backlogs,omitempty"`
	Branches    []string `json:"branches,omitempty"`
	PassingYear *int     `json:"passing_year,omitempty"`
}

func (c criteriaRequest) toInput() command.CriteriaInput {
	return command.CriteriaInput{
		MinCGPA:     c.MinCGPA,
		MaxBacklogs: c.MaxBacklogs,
		Branches:    c.Branches,
		PassingYear: c.PassingYear,
	}
}

// publishOpeningRequest is the payload for POST /api/v1/openings.
type publishOpeningRequest struct {
	Company     string          `json:"company"`
	Role        string          `json:"role"`
	Description string          `json:"description"`
	Deadline    jsonTime        `json:"deadline"`
	Positions   int             `json:"positions"`
	Criteria    criteriaRequest `json:"criteria"`
}

// handlePublishOpening handles POST /api/v1/openings
func (s *Server) handlePublishOpening(w http.ResponseWriter, r *http.Request) {
	if s.deps.PublishOpeningHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Opening handler not configured")
		return
	}

	var req publishOpeningRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cmd := command.PublishOpeningCommand{
		Company:       req.Company,
		Role:          req.Role,
		Description:   req.Description,
		Deadline:      req.Deadline.Time,
		Positions:     req.Positions,
		Criteria:      req.Criteria.toInput(),
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.PublishOpeningHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to publish opening", logger.Err(err), logger.String("company", req.Company))
		s.writeDomainError(w, err, "Failed to publish opening")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// openWindowRequest is the payload for POST /api/v1/openings/{id}/windows.
type openWindowRequest struct {
	StartDate jsonTime        `json:"start_date"`
	EndDate   jsonTime        `json:"end_date"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Criteria  criteriaRequest `json:"criteria"`
}

// handleOpenWindow handles POST /api/v1/openings/{id}/windows
func (s *Server) handleOpenWindow(w http.ResponseWriter, r *http.Request) {
	openingID := r.PathValue("id")
	if openingID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Opening ID is required")
		return
	}

	if s.deps.OpenWindowHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Window handler not configured")
		return
	}

	var req openWindowRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cmd := command.OpenWindowCommand{
		OpeningID:     openingID,
		StartDate:     req.StartDate.Time,
		EndDate:       req.EndDate.Time,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Criteria:      req.Criteria.toInput(),
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.OpenWindowHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to open window", logger.Err(err), logger.String("opening_id", openingID))
		s.writeDomainError(w, err, "Failed to open application window")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleGetOpenWindows handles GET /api/v1/windows/open
func (s *Server) handleGetOpenWindows(w http.ResponseWriter, r *http.Request) {
	if s.deps.OpenWindowsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Open windows handler not configured")
		return
	}

	q := query.OpenWindowsQuery{
		OpeningID: getQueryParam(r, "opening_id", ""),
		Limit:     getQueryParamInt(r, "limit", 50),
	}

	result, err := s.deps.OpenWindowsHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to list open windows", logger.Err(err))
		s.writeDomainError(w, err, "Failed to list open windows")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetEligibleCount handles GET /api/v1/windows/{id}/eligible-count
func (s *Server) handleGetEligibleCount(w http.ResponseWriter, r *http.Request) {
	windowID := r.PathValue("id")
	if windowID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Window ID is required")
		return
	}

	if s.deps.EligibleCountHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Eligible count handler not configured")
		return
	}

	q := query.EligibleCountQuery{
		WindowID:  windowID,
		SkipCache: getQueryParamBool(r, "fresh"),
	}

	result, err := s.deps.EligibleCountHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to count eligible students", logger.Err(err), logger.String("window_id", windowID))
		s.writeDomainError(w, err, "Failed to count eligible students")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// applyRequest is the payload for POST /api/v1/applications.
type applyRequest struct {
	StudentID string `json:"student_id"`
	OpeningID string `json:"opening_id"`
}

// handleApply handles POST /api/v1/applications
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	if s.deps.ApplyHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Apply handler not configured")
		return
	}

	var req applyRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cmd := command.ApplyCommand{
		StudentID:     req.StudentID,
		OpeningID:     req.OpeningID,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.ApplyHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to submit application",
			logger.Err(err),
			logger.String("student_id", req.StudentID),
			logger.String("opening_id", req.OpeningID))
		s.writeDomainError(w, err, "Failed to submit application")
		return
	}

	// Ineligibility is a normal outcome: 200 with the denial reason, not an
	// error status.
	if !result.Eligible {
		writeJSON(w, http.StatusOK, result)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleGetApplication handles GET /api/v1/applications/{id}
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	applicationID := r.PathValue("id")
	if applicationID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Application ID is required")
		return
	}

	if s.deps.ApplicationStatusHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Application status handler not configured")
		return
	}

	q := query.ApplicationStatusQuery{ApplicationID: applicationID}

	result, err := s.deps.ApplicationStatusHandler.Handle(r.Context(), q)
	if err != nil {
		if !shared.IsNotFound(err) {
			s.logger.Error("failed to get application", logger.Err(err), logger.String("application_id", applicationID))
		}
		s.writeDomainError(w, err, "Failed to get application")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetOpeningApplications handles GET /api/v1/openings/{id}/applications
func (s *Server) handleGetOpeningApplications(w http.ResponseWriter, r *http.Request) {
	openingID := r.PathValue("id")
	if openingID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Opening ID is required")
		return
	}

	if s.deps.OpeningApplicationsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Applications listing not configured")
		return
	}

	q := query.OpeningApplicationsQuery{
		OpeningID: openingID,
		Status:    getQueryParam(r, "status", ""),
		Offset:    getQueryParamInt(r, "offset", 0),
		Limit:     getQueryParamInt(r, "limit", 50),
	}

	result, err := s.deps.OpeningApplicationsHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to list applications", logger.Err(err), logger.String("opening_id", openingID))
		s.writeDomainError(w, err, "Failed to list applications")
		return
	}

	meta := &ResponseMeta{
		TotalCount: int(result.Total),
		PageSize:   q.Limit,
		HasMore:    int64(q.Offset+len(result.Applications)) < result.Total,
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, meta)
}

// ══════════════════════════════════════════════════════════════════════════════
// REVIEW HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// reviewRequest is the payload for POST /api/v1/applications/{id}/review.
// At least one of new_status and new_score must be present.
type reviewRequest struct {
	ReviewerID string   `json:"reviewer_id"`
	NewStatus  *string  `json:"new_status,omitempty"`
	NewScore   *float64 `json:"new_score,omitempty"`
	Comment    string   `json:"comment,omitempty"`
}

func parseStatus(raw *string) (*application.Status, bool) {
	if raw == nil {
		return nil, true
	}
	status := application.Status(*raw)
	if !status.IsValid() {
		return nil, false
	}
	return &status, true
}

// handleReviewApplication handles POST /api/v1/applications/{id}/review
func (s *Server) handleReviewApplication(w http.ResponseWriter, r *http.Request) {
	applicationID := r.PathValue("id")
	if applicationID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Application ID is required")
		return
	}

	if s.deps.ReviewHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Review handler not configured")
		return
	}

	var req reviewRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	newStatus, ok := parseStatus(req.NewStatus)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Unknown application status")
		return
	}

	cmd := command.ReviewApplicationCommand{
		ApplicationID: applicationID,
		ReviewerID:    req.ReviewerID,
		NewStatus:     newStatus,
		NewScore:      req.NewScore,
		Comment:       req.Comment,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.ReviewHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to review application",
			logger.Err(err),
			logger.String("application_id", applicationID),
			logger.String("reviewer_id", req.ReviewerID))
		s.writeDomainError(w, err, "Failed to review application")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// bulkReviewRequest is the payload for POST /api/v1/applications/bulk-review.
type bulkReviewRequest struct {
	ApplicationIDs []string `json:"application_ids"`
	ReviewerID     string   `json:"reviewer_id"`
	NewStatus      *string  `json:"new_status,omitempty"`
	NewScore       *float64 `json:"new_score,omitempty"`
	Comment        string   `json:"comment,omitempty"`
}

// bulkReviewResponse carries the per-item errors as strings so they survive
// JSON encoding.
type bulkReviewResponse struct {
	SucceededCount int               `json:"succeeded_count"`
	FailedCount    int               `json:"failed_count"`
	Errors         map[string]string `json:"errors,omitempty"`
}

// handleBulkReview handles POST /api/v1/applications/bulk-review
func (s *Server) handleBulkReview(w http.ResponseWriter, r *http.Request) {
	if s.deps.BulkReviewHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Bulk review handler not configured")
		return
	}

	var req bulkReviewRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	newStatus, ok := parseStatus(req.NewStatus)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Unknown application status")
		return
	}

	cmd := command.BulkReviewCommand{
		ApplicationIDs: req.ApplicationIDs,
		ReviewerID:     req.ReviewerID,
		NewStatus:      newStatus,
		NewScore:       req.NewScore,
		Comment:        req.Comment,
		CorrelationID:  getRequestID(r.Context()),
	}

	result, err := s.deps.BulkReviewHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to run bulk review", logger.Err(err), logger.String("reviewer_id", req.ReviewerID))
		s.writeDomainError(w, err, "Failed to run bulk review")
		return
	}

	resp := bulkReviewResponse{
		SucceededCount: result.SucceededCount,
		FailedCount:    result.FailedCount,
	}
	if len(result.Errors) > 0 {
		resp.Errors = make(map[string]string, len(result.Errors))
		for id, itemErr := range result.Errors {
			resp.Errors[id] = itemErr.Error()
		}
	}

	// Partial failure is still a processed batch: 207 signals "inspect the
	// per-item errors".
	status := http.StatusOK
	if result.FailedCount > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, resp)
}

// handleGetApplicationHistory handles GET /api/v1/applications/{id}/history
func (s *Server) handleGetApplicationHistory(w http.ResponseWriter, r *http.Request) {
	applicationID := r.PathValue("id")
	if applicationID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Application ID is required")
		return
	}

	if s.deps.ReviewHistoryHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "History handler not configured")
		return
	}

	q := query.ReviewHistoryQuery{
		ApplicationID: applicationID,
		Limit:         getQueryParamInt(r, "limit", 50),
	}

	result, err := s.deps.ReviewHistoryHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to get application history", logger.Err(err), logger.String("application_id", applicationID))
		s.writeDomainError(w, err, "Failed to get application history")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetReviewerHistory handles GET /api/v1/reviewers/{id}/history
func (s *Server) handleGetReviewerHistory(w http.ResponseWriter, r *http.Request) {
	reviewerID := r.PathValue("id")
	if reviewerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Reviewer ID is required")
		return
	}

	if s.deps.ReviewHistoryHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "History handler not configured")
		return
	}

	q := query.ReviewHistoryQuery{
		ReviewerID: reviewerID,
		Limit:      getQueryParamInt(r, "limit", 50),
	}

	result, err := s.deps.ReviewHistoryHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to get reviewer history", logger.Err(err), logger.String("reviewer_id", reviewerID))
		s.writeDomainError(w, err, "Failed to get reviewer history")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUND HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// scheduleRoundRequest is the payload for POST /api/v1/openings/{id}/rounds.
type scheduleRoundRequest struct {
	Number        int      `json:"number"`
	Name          string   `json:"name"`
	ScheduledAt   jsonTime `json:"scheduled_at"`
	MaxCandidates *int     `json:"max_candidates,omitempty"`
}

// handleScheduleRound handles POST /api/v1/openings/{id}/rounds
func (s *Server) handleScheduleRound(w http.ResponseWriter, r *http.Request) {
	openingID := r.PathValue("id")
	if openingID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Opening ID is required")
		return
	}

	if s.deps.ScheduleRoundHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Round handler not configured")
		return
	}

	var req scheduleRoundRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cmd := command.ScheduleRoundCommand{
		OpeningID:     openingID,
		Number:        req.Number,
		Name:          req.Name,
		ScheduledAt:   req.ScheduledAt.Time,
		MaxCandidates: req.MaxCandidates,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.ScheduleRoundHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to schedule round", logger.Err(err), logger.String("opening_id", openingID))
		s.writeDomainError(w, err, "Failed to schedule round")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// addCandidateRequest is the payload for POST /api/v1/rounds/{id}/candidates.
type addCandidateRequest struct {
	ApplicationID string `json:"application_id"`
	ReviewerID    string `json:"reviewer_id"`
}

// handleAddCandidate handles POST /api/v1/rounds/{id}/candidates
func (s *Server) handleAddCandidate(w http.ResponseWriter, r *http.Request) {
	roundID := r.PathValue("id")
	if roundID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Round ID is required")
		return
	}

	if s.deps.AddCandidateHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Candidate handler not configured")
		return
	}

	var req addCandidateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cmd := command.AddCandidateCommand{
		RoundID:       roundID,
		ApplicationID: req.ApplicationID,
		ReviewerID:    req.ReviewerID,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.AddCandidateHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to add candidate",
			logger.Err(err),
			logger.String("round_id", roundID),
			logger.String("application_id", req.ApplicationID))
		s.writeDomainError(w, err, "Failed to add candidate")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleRemoveCandidate handles DELETE /api/v1/rounds/{id}/candidates/{applicationID}?reviewer_id=...
func (s *Server) handleRemoveCandidate(w http.ResponseWriter, r *http.Request) {
	roundID := r.PathValue("id")
	applicationID := r.PathValue("applicationID")
	if roundID == "" || applicationID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Round ID and application ID are required")
		return
	}

	if s.deps.RemoveCandidateHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Candidate handler not configured")
		return
	}

	cmd := command.RemoveCandidateCommand{
		RoundID:       roundID,
		ApplicationID: applicationID,
		ReviewerID:    getQueryParam(r, "reviewer_id", ""),
		CorrelationID: getRequestID(r.Context()),
	}

	if err := s.deps.RemoveCandidateHandler.Handle(r.Context(), cmd); err != nil {
		s.logger.Error("failed to remove candidate",
			logger.Err(err),
			logger.String("round_id", roundID),
			logger.String("application_id", applicationID))
		s.writeDomainError(w, err, "Failed to remove candidate")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// completeRoundRequest is the payload for POST /api/v1/rounds/{id}/complete.
type completeRoundRequest struct {
	ReviewerID string                `json:"reviewer_id"`
	Outcomes   []roundOutcomeRequest `json:"outcomes"`
}

type roundOutcomeRequest struct {
	ApplicationID string   `json:"application_id"`
	Passed        bool     `json:"passed"`
	Score         *float64 `json:"score,omitempty"`
}

// handleCompleteRound handles POST /api/v1/rounds/{id}/complete
func (s *Server) handleCompleteRound(w http.ResponseWriter, r *http.Request) {
	roundID := r.PathValue("id")
	if roundID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Round ID is required")
		return
	}

	if s.deps.CompleteRoundHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Round handler not configured")
		return
	}

	var req completeRoundRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	outcomes := make([]command.RoundOutcome, 0, len(req.Outcomes))
	for _, o := range req.Outcomes {
		outcomes = append(outcomes, command.RoundOutcome{
			ApplicationID: o.ApplicationID,
			Passed:        o.Passed,
			Score:         o.Score,
		})
	}

	cmd := command.CompleteRoundCommand{
		RoundID:       roundID,
		ReviewerID:    req.ReviewerID,
		Outcomes:      outcomes,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.CompleteRoundHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to complete round", logger.Err(err), logger.String("round_id", roundID))
		s.writeDomainError(w, err, "Failed to complete round")
		return
	}

	status := http.StatusOK
	if result.FailedCount > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, completeRoundResponse(result))
}

// completeRoundResponse converts per-item errors to strings for JSON.
func completeRoundResponse(result *command.CompleteRoundResult) map[string]interface{} {
	resp := map[string]interface{}{
		"round_id":       result.RoundID,
		"advanced_count": result.AdvancedCount,
		"selected_count": result.SelectedCount,
		"rejected_count": result.RejectedCount,
		"skipped_count":  result.SkippedCount,
		"failed_count":   result.FailedCount,
		"completed_at":   result.CompletedAt,
	}
	if len(result.Errors) > 0 {
		errs := make(map[string]string, len(result.Errors))
		for id, itemErr := range result.Errors {
			errs[id] = itemErr.Error()
		}
		resp["errors"] = errs
	}
	return resp
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST DECODING & ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// maxRequestBody caps JSON request bodies at 1 MiB.
const maxRequestBody = 1 << 20

// jsonTime accepts both RFC 3339 instants and bare "2006-01-02" dates, which
// is what the window endpoints send for calendar-date fields.
type jsonTime struct {
	time.Time
}

func (t *jsonTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return fmt.Errorf("invalid time %q: expected RFC 3339 or YYYY-MM-DD", raw)
	}
	t.Time = parsed
	return nil
}

// decodeJSON decodes the request body into dst, writing the error response
// itself. Returns false when the handler should stop.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", err.Error())
		return false
	}
	return true
}

// writeDomainError maps a domain error to an HTTP status. The fallback
// message is used for unclassified errors so internals never leak.
func (s *Server) writeDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsAlreadyExists(err), shared.IsConflict(err):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())
	case shared.IsTerminalState(err):
		writeJSONError(w, http.StatusConflict, "terminal_state", err.Error())
	case errors.Is(err, shared.ErrInvalidState),
		errors.Is(err, shared.ErrStateTransition),
		errors.Is(err, shared.ErrExpired):
		writeJSONError(w, http.StatusUnprocessableEntity, "invalid_state", err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
	case errors.Is(err, shared.ErrForbidden):
		writeJSONError(w, http.StatusForbidden, "forbidden", "Forbidden")
	case shared.IsExternalService(err):
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "Service temporarily unavailable")
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}
