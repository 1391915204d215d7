package worker

import (
	"github.com/spec-kit/claims-console/internal/service"
)

// StartAuditWorker registers the access audit handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
