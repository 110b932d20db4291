package filehandler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

/*
File explanation:
This file contains utility functions for file handling: detecting image formats,
reading files with a size cap, downloading files, storing uploads and listing
files in a directory. EnsureDir is the one place that creates storage
directories and must be called explicitly by the hosting application.
*/

// DefaultMaxFileSize is the size cap used when callers pass a non-positive limit
const DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

// ErrFileTooLarge is returned when an input exceeds its size cap
var ErrFileTooLarge = errors.New("file too large")

// ErrUnsupportedFormat is returned when content is not a known image format
var ErrUnsupportedFormat = errors.New("unsupported file format")

// SupportedImageFormats is a map of file extensions to their format names
var SupportedImageFormats = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".jpe":  "jpeg",
	".gif":  "gif",
	".bmp":  "bmp",
	".tif":  "tiff",
	".tiff": "tiff",
	".webp": "webp",
}

// mimeFormats maps sniffed MIME types to our format names
var mimeFormats = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
	"image/tiff": "tiff",
	"image/webp": "webp",
}

// FormatExtensions returns the canonical file extension for each format
func FormatExtensions() map[string]string {
	return map[string]string{
		"png":  ".png",
		"jpeg": ".jpg",
		"gif":  ".gif",
		"bmp":  ".bmp",
		"tiff": ".tif",
		"webp": ".webp",
	}
}

// SniffFormat detects the image format from the leading bytes of a file
func SniffFormat(head []byte) (string, error) {
	kind, err := filetype.Match(head)
	if err != nil {
		return "", fmt.Errorf("failed to sniff content: %w", err)
	}
	if kind == filetype.Unknown {
		return "", fmt.Errorf("%w: unknown content", ErrUnsupportedFormat)
	}
	if format, ok := mimeFormats[kind.MIME.Value]; ok {
		return format, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind.MIME.Value)
}

// DetectFileFormat detects the format of a file. The content wins over the
// extension; the extension is only used when the content is not recognized.
func DetectFileFormat(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// 262 bytes is enough for every signature filetype knows about
	head := make([]byte, 262)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	if format, err := SniffFormat(head[:n]); err == nil {
		return format, nil
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	if format, ok := SupportedImageFormats[ext]; ok {
		return format, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filePath)
}

// ReadFileBytes reads a whole file, refusing files larger than maxSize
func ReadFileBytes(filePath string, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", filePath)
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, info.Size(), maxSize)
	}

	content := make([]byte, info.Size())
	if _, err := io.ReadFull(file, content); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return content, nil
}

// ReadLimited reads r up to maxSize bytes and fails if more remain
func ReadLimited(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w (max %d bytes)", ErrFileTooLarge, maxSize)
	}
	return data, nil
}

// ReadLines reads a file and returns its lines
func ReadLines(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	return lines, scanner.Err()
}

// IsURL checks if the given string is a URL
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// EnsureDir creates dir and its parents if they don't exist
func EnsureDir(dir string) error {
	if dir == "" {
		return errors.New("empty directory path")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// GenerateFilename returns a collision-free name in dir keeping ext
func GenerateFilename(dir, ext string) string {
	return filepath.Join(dir, uuid.NewString()+strings.ToLower(ext))
}

// SaveUpload stores data under dir with a generated name. The client supplied
// name only contributes its extension, and only when it is a known image one.
func SaveUpload(dir, clientName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(clientName))
	if _, ok := SupportedImageFormats[ext]; !ok {
		ext = ""
	}

	target := GenerateFilename(dir, ext)
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	return target, nil
}

// DownloadFromURL downloads a file from a URL into outputDir
func DownloadFromURL(ctx context.Context, rawURL, outputDir string, timeout time.Duration, maxSize int64) (string, error) {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}
	if resp.ContentLength > maxSize {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, resp.ContentLength, maxSize)
	}

	data, err := ReadLimited(resp.Body, maxSize)
	if err != nil {
		return "", fmt.Errorf("failed to read download: %w", err)
	}

	if err := EnsureDir(outputDir); err != nil {
		return "", err
	}

	// Keep the extension from the URL path so the saved file is recognizable
	ext := path.Ext(req.URL.Path)
	if _, ok := SupportedImageFormats[strings.ToLower(ext)]; !ok {
		ext = ""
		if format, err := SniffFormat(data); err == nil {
			ext = FormatExtensions()[format]
		}
	}

	outputPath := GenerateFilename(outputDir, ext)
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save downloaded file: %w", err)
	}

	return outputPath, nil
}

// FilesInDirectory returns the files under dirPath whose extension is in
// extensions (all files when extensions is empty). Recursion is optional.
func FilesInDirectory(dirPath string, extensions []string, recursive bool) ([]string, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dirPath)
	}

	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}

	var files []string
	err = filepath.WalkDir(dirPath, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dirPath && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if len(wanted) == 0 || wanted[strings.ToLower(filepath.Ext(p))] {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// ImageExtensions lists the extensions of SupportedImageFormats
func ImageExtensions() []string {
	exts := make([]string, 0, len(SupportedImageFormats))
	for ext := range SupportedImageFormats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
