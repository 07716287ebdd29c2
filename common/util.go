package common

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

func GetAssetAbsPath(fileName string) (string, error) {
	return GetAbsPath(fileName, "assets")
}

// GetAbsPath resolves fileName against the named directory next to this
// package, so assets load independently of the working directory.
func GetAbsPath(fileName, dirName string) (string, error) {
	_, cFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("runtime.Caller error")
	}
	path := filepath.Join(filepath.Dir(cFilePath), dirName, fileName)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

func GetAsset(filename string) (string, error) {
	path, err := GetAssetAbsPath(filename)
	if err != nil {
		return "", err
	}
	return ReadFile(path)
}

func ReadFile(filepath string) (string, error) {
	bytes, err := os.ReadFile(filepath)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// PlainJsonString strips the quoting and whitespace a JSON document
// picks up when embedded in another JSON string, for one-line logs.
func PlainJsonString(jsonInput string) string {
	s := strings.TrimPrefix(jsonInput, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.NewReplacer(`\"`, `"`, "\n", "", " ", "").Replace(s)
}

// IsDirWritable probes dirPath with a throwaway temp file.
func IsDirWritable(dirPath string) error {
	info, err := os.Stat(dirPath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dirPath)
	}
	probe, err := os.CreateTemp(dirPath, "probe-*.tmp")
	if err != nil {
		return fmt.Errorf("write permission denied for directory %s: %w", dirPath, err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

func ReadSettingsFile(settingsPath string) (string, error) {
	bytes, err := os.ReadFile(settingsPath)
	if err != nil {
		abs, absErr := filepath.Abs(settingsPath)
		if absErr != nil {
			abs = settingsPath
		}
		zap.L().Error(fmt.Sprintf("failed to read settings file/path:%s/reason:%s", abs, err))
		return "", err
	}
	return string(bytes), nil
}
