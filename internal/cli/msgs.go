package cli

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort      = "Read, build, merge and write filesystem trees"
	MsgVersionShort   = "Print version information"
	MsgVersionLong    = "Print detailed version information including commit hash and build date"
	MsgShowShort      = "Draw the tree found at a path"
	MsgLsShort        = "List the tree found at a path as path text"
	MsgBuildShort     = "Create the tree described by a path-text file"
	MsgMergeShort     = "Merge two trees and write the result"
	MsgVerifyShort    = "Check that a path matches a path-text file"
	MsgGenConfigShort = "Print a configuration file"

	// Status messages
	MsgWriteSummary   = "created %d, replaced %d, unchanged %d\n"
	MsgSkippedFormat  = "skipped %s: %v\n"
	MsgConflictFormat = "conflict %s\n"
	MsgVerifyOK       = "ok"
	MsgDivergeFormat  = "diverges at %s\n"

	// Version output
	MsgVersionFormat = "fstree version %s\n"
	MsgCommitFormat  = "Commit: %s\n"
	MsgBuiltFormat   = "Built:  %s\n"
)

// Long messages
const (
	MsgRootLong = `fstree models a filesystem subtree as a value: directories, empty regular
files and symlinks. It reads trees from disk (following symlinks or recording
them), builds them from path text, merges them and writes them back.`

	MsgPathTextHelp = `Path text has one entry per line:

  a/b/c          regular file (parents are implied)
  a/b/           directory
  a/link -> ../x symlink with a verbatim target
  # comment      ignored, as are blank lines`

	MsgBuildLong = "Build parses SPECFILE (\"-\" reads stdin) and writes the tree at TARGET.\n\n" + MsgPathTextHelp

	MsgVerifyLong = `Verify reads PATH back and compares it with SPECFILE. The first difference
is printed and the command fails; matching trees print "ok".`

	MsgMergeLong = `Merge reads A and B without following symlinks, merges B into A and writes
the result at TARGET. Conflicting entries are all listed and nothing is written.`
)
