package repoargs

type RepositoryName string

const (
	CustomerRepoName     RepositoryName = "customer"
	BookRepoName         RepositoryName = "book"
	OrderRepoName        RepositoryName = "order"
	PaymentRepoName      RepositoryName = "payment"
	AuditLogRepoName     RepositoryName = "audit_log"
	NotificationRepoName RepositoryName = "notification"
	AdminRepoName        RepositoryName = "admin"
)
