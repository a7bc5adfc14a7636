package testutil

import (
	"fmt"
	"path"
)

// BuildTree fills repo below root with a regular tree: every directory holds
// filesPerDir files, and directories above maxDepth hold dirsPerDir
// subdirectories. It returns the number of files and directories created,
// root included.
func BuildTree(repo *FakeRepository, root string, maxDepth, dirsPerDir, filesPerDir int) (files, dirs int) {
	var build func(dir string, depth int)
	build = func(dir string, depth int) {
		dirs++
		repo.AddDir(dir)
		for i := 0; i < filesPerDir; i++ {
			repo.AddFile(path.Join(dir, fmt.Sprintf("file-%02d.bin", i)), fmt.Sprintf("%s#%d", dir, i))
			files++
		}
		if depth >= maxDepth {
			return
		}
		for i := 0; i < dirsPerDir; i++ {
			build(path.Join(dir, fmt.Sprintf("dir-%02d", i)), depth+1)
		}
	}
	build(root, 0)
	return files, dirs
}
