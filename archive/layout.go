package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"atcoder-archiver/lang"
	"atcoder-archiver/problems"
)

const (
	metadataFile = "metadata.json"
	resultsFile  = "results.json"
)

// ArtifactPath builds the output path for a submission:
// <root>/<contest>/<problem>/<language-family>.<ext>. The problem
// directory uses the full problem_id rather than the task letter,
// because ids like "abs_practice_a" are only unique in full.
func ArtifactPath(root string, sub problems.Submission) string {
	return filepath.Join(root, sub.ContestID, sub.ProblemID, lang.Filename(sub.Language))
}

// WriteArtifact writes the source text to path, creating parent
// directories as needed. Existing files are overwritten: the archive
// mirrors upstream, it does not version.
func WriteArtifact(path, source string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create problem directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		return fmt.Errorf("write source file: %w", err)
	}
	return nil
}

// UpdateMetadata records which submission produced a file, in a
// metadata.json next to it. The file maps output filename to the
// submission record and is merged so that multiple languages in one
// problem directory keep their entries. It is provenance only and is
// never read back to decide whether to fetch.
func UpdateMetadata(artifactPath string, sub problems.Submission) error {
	dir := filepath.Dir(artifactPath)
	metaPath := filepath.Join(dir, metadataFile)

	metadata := make(map[string]problems.Submission)
	if data, err := os.ReadFile(metaPath); err == nil {
		if err := json.Unmarshal(data, &metadata); err != nil {
			// A corrupt metadata file is rebuilt from scratch.
			metadata = make(map[string]problems.Submission)
		}
	}

	metadata[filepath.Base(artifactPath)] = sub

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// WriteResults dumps the full submission history to results.json at
// the archive root, overwritten on each run.
func WriteResults(root string, submissions []problems.Submission) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	data, err := json.MarshalIndent(submissions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, resultsFile), data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
