package profile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFromDirectory discovers and parses all profile files in a directory.
func LoadFromDirectory(dirPath string) ([]ProfileWithFile, []ValidationError) {
	var profiles []ProfileWithFile
	var errs []ValidationError

	files, err := discoverYAMLFiles(dirPath)
	if err != nil {
		errs = append(errs, ValidationError{
			File:    dirPath,
			Message: fmt.Sprintf("failed to read directory: %v", err),
		})
		return nil, errs
	}

	for _, file := range files {
		p, err := parseYAMLFile(file)
		if err != nil {
			errs = append(errs, ValidationError{
				File:    file,
				Message: fmt.Sprintf("failed to parse YAML: %v", err),
			})
			continue
		}
		profiles = append(profiles, ProfileWithFile{Profile: p, File: file})
	}

	return profiles, errs
}

// discoverYAMLFiles finds all *.yaml and *.yml files under a directory.
func discoverYAMLFiles(dirPath string) ([]string, error) {
	var files []string

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

func parseYAMLFile(filePath string) (*Profile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	return &p, nil
}
