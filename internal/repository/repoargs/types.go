package repoargs

type RepositoryName string

const (
	UserRepoName         RepositoryName = "user"
	MinerRepoName        RepositoryName = "miner"
	UserMinerRepoName    RepositoryName = "user_miner"
	WithdrawalRepoName   RepositoryName = "withdrawal"
	NotificationRepoName RepositoryName = "notification"
)
