// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// sourceRoots are the trees Stats counts.
var sourceRoots = []string{"cmd", "internal", "pkg"}

// pkgStats is the line count of one package directory.
type pkgStats struct {
	Package string `json:"package"`
	Prod    int    `json:"prod"`
	Test    int    `json:"test"`
}

// Stats prints Go lines of code per package and in total, plus the word
// count of the top-level Markdown documents, as one JSON object.
func Stats() error {
	byPkg := map[string]*pkgStats{}

	for _, root := range sourceRoots {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") {
				return nil
			}
			count, countErr := countLines(path)
			if countErr != nil {
				return nil
			}
			dir := filepath.ToSlash(filepath.Dir(path))
			ps, ok := byPkg[dir]
			if !ok {
				ps = &pkgStats{Package: dir}
				byPkg[dir] = ps
			}
			if strings.HasSuffix(path, "_test.go") {
				ps.Test += count
			} else {
				ps.Prod += count
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	packages := make([]pkgStats, 0, len(byPkg))
	var prodLines, testLines int
	for _, ps := range byPkg {
		packages = append(packages, *ps)
		prodLines += ps.Prod
		testLines += ps.Test
	}
	sort.Slice(packages, func(i, j int) bool { return packages[i].Package < packages[j].Package })

	docWords, err := countWordsInGlob("*.md")
	if err != nil {
		return err
	}

	record := struct {
		Packages []pkgStats `json:"packages"`
		Prod     int        `json:"go_loc_prod"`
		Test     int        `json:"go_loc_test"`
		Total    int        `json:"go_loc"`
		DocWords int        `json:"doc_wc"`
	}{packages, prodLines, testLines, prodLines + testLines, docWords}

	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}

func countWordsInGlob(pattern string) (int, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		total += countWords(string(data))
	}
	return total, nil
}

func countWords(s string) int {
	count := 0
	inWord := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWord = false
		} else if !inWord {
			inWord = true
			count++
		}
	}
	return count
}
