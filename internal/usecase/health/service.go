package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	index  IndexChecker
	schema SchemaChecker
	repo   RepositoryPinger
}

// New creates a Service. schema and repo can be nil.
func New(index IndexChecker, schema SchemaChecker, repo RepositoryPinger) *Service {
	return &Service{index: index, schema: schema, repo: repo}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.index.Health(ctx); err != nil {
		checks["index"] = CheckError
	} else {
		checks["index"] = CheckOK
	}

	if s.schema != nil {
		if err := s.schema.Ensure(ctx); err != nil {
			checks["schema"] = CheckError
		} else {
			checks["schema"] = CheckOK
		}
	}

	if s.repo != nil {
		if err := s.repo.Ping(ctx); err != nil {
			checks["repository"] = CheckError
		} else {
			checks["repository"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
