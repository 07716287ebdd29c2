package core

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// MemoryDB keeps finished jobs in process memory. The channel consumer
// stores jobs handed over by the scheduler; Insert/Get/Update/Delete
// are for direct access from the components. The consumer exits when
// the channel is closed at tear-down.
type MemoryDB struct {
	mu     sync.RWMutex
	dbMap  map[string]Job
	dbChan <-chan Job
}

func (db *MemoryDB) Setup(dbc DBChan, c *Conf) error {
	db.dbMap = make(map[string]Job)
	db.dbChan = dbc
	go func() {
		for job := range db.dbChan {
			zap.L().Debug(fmt.Sprintf("[MemoryDB] received %s", job.JobData().ID))
			if err := db.Update(job); err != nil {
				zap.L().Error(fmt.Sprintf("failed to update a job(%s). Reason:%s",
					job.JobData().ID, err.Error()))
			}
		}
	}()
	return nil
}

func (db *MemoryDB) Insert(j Job) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.dbMap[j.JobData().ID]; ok {
		return ErrorJobIDConflict
	}
	db.dbMap[j.JobData().ID] = j
	return nil
}

func (db *MemoryDB) Get(jobID string) (Job, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if j, ok := db.dbMap[jobID]; ok {
		return j, nil
	}
	err := fmt.Errorf("job %s is not in the DB", jobID)
	zap.L().Info("[MemoryDB]", zap.Error(err))
	return nil, err
}

func (db *MemoryDB) Update(j Job) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.dbMap[j.JobData().ID] = j
	return nil
}

func (db *MemoryDB) Delete(jobID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.dbMap[jobID]; !ok {
		err := fmt.Errorf("job %s is not in the DB", jobID)
		zap.L().Info("[MemoryDB]", zap.Error(err))
		return err
	}
	delete(db.dbMap, jobID)
	zap.L().Info(fmt.Sprintf("[MemoryDB] deleted %s from DB", jobID))
	return nil
}
