package domain

import "fmt"

// Storage layout under the course bucket. These paths are a compatibility
// contract with existing readers and must not change shape.
//
//	{owner}/{course}/files/{storedName}        raw upload (written by caller)
//	{owner}/{course}/parsed/{storedName}.txt   extracted text per file
//	{owner}/{course}/parsed/combined.txt       concatenated course text
//	{owner}/{course}/manifest.json             CourseManifest

func RawFilePath(ownerID, courseID, storedName string) string {
	return fmt.Sprintf("%s/%s/files/%s", ownerID, courseID, storedName)
}

func ParsedTextPath(ownerID, courseID, storedName string) string {
	return fmt.Sprintf("%s/%s/parsed/%s.txt", ownerID, courseID, storedName)
}

func CombinedTextPath(ownerID, courseID string) string {
	return fmt.Sprintf("%s/%s/parsed/combined.txt", ownerID, courseID)
}

func ManifestPath(ownerID, courseID string) string {
	return fmt.Sprintf("%s/%s/manifest.json", ownerID, courseID)
}
