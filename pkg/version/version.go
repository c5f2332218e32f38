package version

import "fmt"

// Version is the release the ipog binary was built from. Set with -ldflags.
var Version = "dev"

// GitCommit is the commit the binary was built from. Set with -ldflags.
var GitCommit = "unknown"

// String returns a pretty string concatenation of Version and GitCommit
func String() string {
	return fmt.Sprintf("Version:    %s\nGit commit: %s\n", Version, GitCommit)
}
