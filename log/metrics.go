package log

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oqtopus-team/oqtopus-transpiler/common"
	"github.com/oqtopus-team/oqtopus-transpiler/core"
	"go.uber.org/zap"
)

const MetricsLogTaskName = "metrics_log"
const queueLengthKeyInMetrics = "queue_length"
const processedJobsKeyInMetrics = "processed_jobs"

// MetricsLogTaskImpl periodically writes one JSON line with the queue
// length and the processed-job count. Metrics lines go to their own
// daily file, not to the application log.
type MetricsLogTaskImpl struct {
	FileDir string `toml:"file_dir"`

	out     *dailyFile
	metrics *slog.Logger
	sc      *core.SystemComponents

	core.DefaultTaskImpl
}

func (m *MetricsLogTaskImpl) Setup() error {
	if err := common.IsDirWritable(m.FileDir); err != nil {
		zap.L().Error(fmt.Sprintf("failed to set up metrics log task. Reason:%s", err))
		return err
	}
	m.out = &dailyFile{dir: m.FileDir}
	m.metrics = slog.New(slog.NewJSONHandler(m.out, nil))
	m.sc = core.GetSystemComponents()
	return nil
}

func (m *MetricsLogTaskImpl) SetParams(p interface{}) error {
	if p == nil {
		zap.L().Debug("no params for metrics log task")
		return nil
	}
	mp, ok := p.(map[string]interface{})
	if !ok {
		err := fmt.Errorf("failed to set params for metrics log task/params:%v", p)
		zap.L().Error(err.Error())
		return err
	}
	if fileDir, ok := mp["file_dir"].(string); ok {
		m.FileDir = fileDir
	}
	return nil
}

func (m *MetricsLogTaskImpl) Task() {
	m.metrics.Info(
		"Metrics",
		slog.Int(queueLengthKeyInMetrics, m.sc.GetCurrentQueueSize()),
		slog.Int(processedJobsKeyInMetrics, m.sc.GetProcessedJobCount()),
	)
}

func (m *MetricsLogTaskImpl) Cleanup() {
	m.out.Close()
}

// dailyFile appends to metrics-<date>.log in dir and switches files
// when the date changes. Safe for concurrent writes.
type dailyFile struct {
	mu   sync.Mutex
	dir  string
	day  string
	file *os.File
}

func (df *dailyFile) Write(p []byte) (int, error) {
	df.mu.Lock()
	defer df.mu.Unlock()

	day := time.Now().Format("2006-01-02")
	if df.file == nil || day != df.day {
		if df.file != nil {
			df.file.Close()
		}
		f, err := os.OpenFile(
			filepath.Join(df.dir, fmt.Sprintf("metrics-%s.log", day)),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return 0, err
		}
		df.file = f
		df.day = day
	}
	return df.file.Write(p)
}

func (df *dailyFile) Close() error {
	df.mu.Lock()
	defer df.mu.Unlock()
	if df.file == nil {
		return nil
	}
	return df.file.Close()
}
