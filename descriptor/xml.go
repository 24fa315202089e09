// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package descriptor

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// FileName is the name of a descriptor file.
const FileName = "ProjectInfo.xml"

type xmlDescriptor struct {
	XMLName         xml.Name `xml:"ProjectInfo"`
	ProjectName     string   `xml:"ProjectName"`
	ProjectLanguage string   `xml:"ProjectLanguage"`
	ProjectType     string   `xml:"ProjectType"`
	ProjectGUID     string   `xml:"ProjectGuid"`
	FullPath        string   `xml:"FullPath"`
	IsExcluded      string   `xml:"IsExcluded"`
	Encoding        string   `xml:"Encoding"`
	Configuration   string   `xml:"Configuration"`
	Platform        string   `xml:"Platform"`
	TargetFramework string   `xml:"TargetFramework"`
	AnalysisResults []struct {
		ID       string `xml:"Id,attr"`
		Location string `xml:"Location,attr"`
	} `xml:"AnalysisResults>AnalysisResult"`
	AnalysisSettings []struct {
		Name  string `xml:"Name,attr"`
		Value string `xml:",chardata"`
	} `xml:"AnalysisSettings>Property"`
}

// Parse parses a descriptor file content.
func Parse(buf []byte) (*Descriptor, error) {
	var x xmlDescriptor
	err := xml.NewDecoder(bytes.NewReader(buf)).Decode(&x)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(x.ProjectGUID) == "" {
		return nil, fmt.Errorf("missing ProjectGuid")
	}
	excluded := false
	if s := strings.TrimSpace(x.IsExcluded); s != "" {
		excluded, err = strconv.ParseBool(strings.ToLower(s))
		if err != nil {
			return nil, fmt.Errorf("bad IsExcluded %q: %w", x.IsExcluded, err)
		}
	}
	d := &Descriptor{
		ProjectID:       NormalizeID(x.ProjectGUID),
		FullPath:        strings.TrimSpace(x.FullPath),
		Name:            strings.TrimSpace(x.ProjectName),
		Kind:            ParseKind(x.ProjectType),
		Excluded:        excluded,
		Language:        NormalizeLanguage(x.ProjectLanguage),
		Encoding:        strings.TrimSpace(x.Encoding),
		Configuration:   strings.TrimSpace(x.Configuration),
		Platform:        strings.TrimSpace(x.Platform),
		TargetFramework: strings.TrimSpace(x.TargetFramework),
	}
	for _, r := range x.AnalysisResults {
		d.AnalysisResults = append(d.AnalysisResults, AnalysisResult{
			ID:       ResultID(strings.TrimSpace(r.ID)),
			Location: strings.TrimSpace(r.Location),
		})
	}
	for _, p := range x.AnalysisSettings {
		d.AnalysisSettings = append(d.AnalysisSettings, Property{
			Key:   strings.TrimSpace(p.Name),
			Value: p.Value,
		})
	}
	return d, nil
}

// FS is the filesystem access needed to find descriptors.
type FS interface {
	ListDirectories(ctx context.Context, root string, recursive bool, prune func(string) bool) ([]string, error)
	ListFiles(ctx context.Context, dir string) ([]string, error)
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// Find loads all descriptor files under dir, in path order.
// Unreadable or malformed descriptors are logged and skipped.
func Find(ctx context.Context, fsys FS, dir string, logger *log.Logger) ([]*Descriptor, error) {
	if logger == nil {
		logger = log.Default()
	}
	dirs, err := fsys.ListDirectories(ctx, dir, true, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list descriptors in %s: %w", dir, err)
	}
	dirs = append([]string{dir}, dirs...)
	var descs []*Descriptor
	for _, d := range dirs {
		fname := filepath.Join(d, FileName)
		files, err := fsys.ListFiles(ctx, d)
		if err != nil {
			logger.Warnf("failed to list files in %s: %v", d, err)
			continue
		}
		found := false
		for _, f := range files {
			if f == fname {
				found = true
				break
			}
		}
		if !found {
			continue
		}
		buf, err := fsys.ReadFile(ctx, fname)
		if err != nil {
			logger.Warnf("failed to read %s: %v", fname, err)
			continue
		}
		desc, err := Parse(buf)
		if err != nil {
			logger.Warnf("failed to parse %s: %v", fname, err)
			continue
		}
		desc.Source = fname
		descs = append(descs, desc)
	}
	logger.Debugf("found %d descriptors under %s", len(descs), dir)
	return descs, nil
}
