package data

var (
	Version   string
	GitCommit string
	GitBranch string
)
