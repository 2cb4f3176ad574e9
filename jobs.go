package main

import (
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	jobCancellersMu sync.Mutex
	jobCancellers   = make(map[string]context.CancelFunc)
)

// Job represents one document translation job.
type Job struct {
	ID            string
	SourcePath    string
	SourceLang    string
	TargetLangs   []string
	Mode          string // "inline", "overlay", "side_by_side"
	Status        string // "pending", "in_progress", "completed", "failed", "cancelled"
	Error         string
	Outputs       []string // paths of produced files
	SegmentsDone  int
	SegmentsTotal int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// JobStore manages jobs and their statuses
type JobStore struct {
	sync.RWMutex
	jobs map[string]*Job
}

var (
	logger = logrus.New()

	jobStore = &JobStore{
		jobs: make(map[string]*Job),
	}
	jobQueue = make(chan *Job, 100) // Buffered channel with capacity of 100 jobs
)

func init() {
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetLevel(logrus.InfoLevel)
	logger.WithField("prefix", "TRANSLATE_JOB")
}

func generateJobID() string {
	return uuid.New().String()
}

func (store *JobStore) addJob(job *Job) {
	store.Lock()
	defer store.Unlock()
	job.SegmentsDone = 0
	store.jobs[job.ID] = job
	logger.Infof("Job added: %s (%s -> %v, mode %s)", job.ID, job.SourcePath, job.TargetLangs, job.Mode)
}

// getJob returns a snapshot of the job. Copies keep readers decoupled from
// the worker mutating the stored record under the store lock.
func (store *JobStore) getJob(jobID string) (Job, bool) {
	store.RLock()
	defer store.RUnlock()
	job, exists := store.jobs[jobID]
	if !exists {
		return Job{}, false
	}
	return *job, true
}

// GetAllJobs returns snapshots of all jobs, newest first.
func (store *JobStore) GetAllJobs() []Job {
	store.RLock()
	defer store.RUnlock()

	jobs := make([]Job, 0, len(store.jobs))
	for _, job := range store.jobs {
		jobs = append(jobs, *job)
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	return jobs
}

func (store *JobStore) updateJobStatus(jobID, status, errMsg string) {
	store.Lock()
	defer store.Unlock()
	if job, exists := store.jobs[jobID]; exists {
		job.Status = status
		if errMsg != "" {
			job.Error = errMsg
		}
		job.UpdatedAt = time.Now()
		logger.Infof("Job %s status updated: %s", jobID, status)
	}
}

func (store *JobStore) updateProgress(jobID string, done, total int) {
	store.Lock()
	defer store.Unlock()
	if job, exists := store.jobs[jobID]; exists {
		job.SegmentsDone = done
		job.SegmentsTotal = total
		job.UpdatedAt = time.Now()
	}
}

func (store *JobStore) setOutputs(jobID string, outputs []string) {
	store.Lock()
	defer store.Unlock()
	if job, exists := store.jobs[jobID]; exists {
		job.Outputs = outputs
		job.UpdatedAt = time.Now()
	}
}

// cancelJob stops a running job; pending jobs are cancelled when the worker
// picks them up and finds the store entry already marked.
func cancelJob(jobID string) bool {
	jobCancellersMu.Lock()
	cancel, running := jobCancellers[jobID]
	jobCancellersMu.Unlock()
	if running {
		cancel()
		return true
	}
	if job, exists := jobStore.getJob(jobID); exists && job.Status == "pending" {
		jobStore.updateJobStatus(jobID, "cancelled", "Job cancelled by user")
		return true
	}
	return false
}

func startWorkerPool(app *App, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go func(workerID int) {
			logger.Infof("Worker %d started", workerID)
			for job := range jobQueue {
				logger.Infof("Worker %d processing job: %s", workerID, job.ID)
				processJob(app, job)
			}
		}(i)
	}
}

func processJob(app *App, job *Job) {
	if current, ok := jobStore.getJob(job.ID); ok && current.Status == "cancelled" {
		return
	}
	jobStore.updateJobStatus(job.ID, "in_progress", "")

	jobCtx, cancel := context.WithCancel(context.Background())
	jobCancellersMu.Lock()
	jobCancellers[job.ID] = cancel
	jobCancellersMu.Unlock()
	defer func() {
		cancel()
		jobCancellersMu.Lock()
		delete(jobCancellers, job.ID)
		jobCancellersMu.Unlock()
	}()

	outputs, err := app.TranslateDocument(jobCtx, TranslationRequest{
		SourcePath:  job.SourcePath,
		SourceLang:  job.SourceLang,
		TargetLangs: job.TargetLangs,
		Mode:        job.Mode,
	}, func(done, total int) {
		jobStore.updateProgress(job.ID, done, total)
	})
	if err != nil {
		if jobCtx.Err() == context.Canceled {
			jobStore.updateJobStatus(job.ID, "cancelled", "Job cancelled by user")
			logger.Infof("Job cancelled: %s", job.ID)
		} else {
			logger.Errorf("Error translating document for job %s: %v", job.ID, err)
			jobStore.updateJobStatus(job.ID, "failed", err.Error())
		}
		return
	}

	jobStore.setOutputs(job.ID, outputs)
	jobStore.updateJobStatus(job.ID, "completed", "")
	logger.Infof("Job completed: %s (%d outputs)", job.ID, len(outputs))
}
