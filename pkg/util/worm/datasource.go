package worm

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/ctford/wicketworm/internal/logger"
	"github.com/ctford/wicketworm/pkg/transport"
	"github.com/ctford/wicketworm/pkg/util"
)

// Datasource fetches historical match archives from Cricsheet, caches them
// on disk, and feeds parsed matches into the database and the learner
type Datasource struct {
	BaseURL      string
	DownloadsURL string
	Matches      []*MatchRecord
	States       []*GameState
}

var (
	datasourceInstance *Datasource
	datasourceOnce     sync.Once
)

// GetDatasourceInstance returns the singleton instance of Datasource
func GetDatasourceInstance() *Datasource {
	datasourceOnce.Do(func() {
		baseURL := Config.CricsheetBaseURL
		datasourceInstance = &Datasource{
			BaseURL:      baseURL,
			DownloadsURL: fmt.Sprintf("%s/downloads/", baseURL),
			Matches:      make([]*MatchRecord, 0),
			States:       make([]*GameState, 0),
		}
	})
	return datasourceInstance
}

/////////////////////////////////////////////////////////////////////////
////// Fetching and caching
/////////////////////////////////////////////////////////////////////////

// DiscoverArchives scrapes the Cricsheet downloads page for JSON archive links
func (ds *Datasource) DiscoverArchives() ([]string, error) {
	htmlContent, err := transport.GetHtml(ds.DownloadsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch downloads page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(htmlContent)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse downloads page: %w", err)
	}

	var archives []string
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !strings.HasSuffix(href, "_json.zip") {
			return
		}
		if strings.HasPrefix(href, "http") {
			archives = append(archives, href)
		} else {
			archives = append(archives, ds.BaseURL+"/"+strings.TrimPrefix(href, "/"))
		}
	})

	logger.Info("Discovered archives on downloads page", len(archives))
	return archives, nil
}

// EnsureArchive downloads the configured archive unless it is already cached,
// returning the local path
func (ds *Datasource) EnsureArchive() (string, error) {
	if err := util.EnsureDir(Config.WormCachePath); err != nil {
		return "", err
	}

	archivePath := filepath.Join(Config.WormCachePath, Config.CricsheetArchive)
	if util.FileExists(archivePath) {
		logger.Info("Using cached archive", archivePath)
		return archivePath, nil
	}

	archiveURL := ds.DownloadsURL + Config.CricsheetArchive
	logger.Info("Downloading archive", archiveURL)

	data, err := transport.GetBytes(archiveURL)
	if err != nil {
		return "", fmt.Errorf("failed to download archive: %w", err)
	}

	if err := os.WriteFile(archivePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write archive to cache: %w", err)
	}

	return archivePath, nil
}

// ExtractArchive unpacks the match JSON files from a downloaded archive into
// the cache directory, returning the paths of the extracted files
func (ds *Datasource) ExtractArchive(archivePath string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	var extracted []string
	for _, file := range reader.File {
		if !strings.HasSuffix(file.Name, ".json") {
			continue
		}

		destPath := filepath.Join(Config.WormCachePath, filepath.Base(file.Name))
		if util.FileExists(destPath) {
			extracted = append(extracted, destPath)
			continue
		}

		rc, err := file.Open()
		if err != nil {
			logger.Warn("Skipping unreadable archive member", file.Name, err)
			continue
		}

		var buf bytes.Buffer
		_, err = io.Copy(&buf, rc)
		rc.Close()
		if err != nil {
			logger.Warn("Skipping truncated archive member", file.Name, err)
			continue
		}

		if err := os.WriteFile(destPath, buf.Bytes(), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", destPath, err)
		}
		extracted = append(extracted, destPath)
	}

	logger.Info("Extracted match files from archive", len(extracted))
	return extracted, nil
}

/////////////////////////////////////////////////////////////////////////
////// Parsing and persistence
/////////////////////////////////////////////////////////////////////////

// LoadFromDir parses every match JSON file in a directory. Malformed files
// are logged and skipped; they never abort the load.
func (ds *Datasource) LoadFromDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read match directory %s: %w", dir, err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable match file", path, err)
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		match, states, err := ParseMatchData(id, data)
		if err != nil {
			logger.Warn("Skipping malformed match file", path, err)
			continue
		}

		ds.Matches = append(ds.Matches, match)
		ds.States = append(ds.States, states...)
		loaded++

		if loaded%100 == 0 {
			logger.Info("Parsed matches so far", loaded)
		}
	}

	logger.Info("Loaded matches from directory", dir, loaded)
	return nil
}

// Corpus flattens the loaded matches into the learner's input
func (ds *Datasource) Corpus() []InningsRecord {
	var corpus []InningsRecord
	for _, match := range ds.Matches {
		corpus = append(corpus, match.Innings...)
	}
	return corpus
}

// Update runs the full ingestion pipeline: fetch and extract the archive,
// parse every match, and persist records, partnership samples and per-over
// game states to the database
func (ds *Datasource) Update() error {
	if err := createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	archivePath, err := ds.EnsureArchive()
	if err != nil {
		return err
	}

	if _, err := ds.ExtractArchive(archivePath); err != nil {
		return err
	}

	if err := ds.LoadFromDir(Config.WormCachePath); err != nil {
		return err
	}

	return ds.Persist()
}

// Persist writes the loaded matches, their partnership samples and game
// states to the database
func (ds *Datasource) Persist() error {
	var records []Persistable
	for _, match := range ds.Matches {
		records = append(records, match)
		for _, innings := range match.Innings {
			for _, sample := range ExtractPartnerships(innings) {
				s := sample
				records = append(records, &s)
			}
		}
	}
	for _, state := range ds.States {
		records = append(records, state)
	}

	if err := BulkSave(records); err != nil {
		return fmt.Errorf("failed to persist parsed matches: %w", err)
	}

	logger.Info("Persisted records", len(records))
	return nil
}

// LearnFromDatabase rebuilds the partnership store from previously persisted
// samples without refetching or reparsing anything
func LearnFromDatabase() (*Store, error) {
	results, err := FindAll(&PartnershipSample{})
	if err != nil {
		return nil, fmt.Errorf("failed to load partnership samples: %w", err)
	}

	var samples []PartnershipSample
	for _, result := range results {
		if sample, ok := result.(*PartnershipSample); ok {
			samples = append(samples, *sample)
		}
	}

	if len(samples) == 0 {
		logger.Warn("No partnership samples in database, store will be all defaults")
	}

	return LearnFromSamples(samples), nil
}
