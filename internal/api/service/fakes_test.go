package service

import (
	"errors"
	"sort"
	"sync"

	"upkeep/internal/api/models"
	"upkeep/internal/notify"
)

// fakeStore is an in-memory JobStore standing in for the Postgres repo.
type fakeStore struct {
	mu           sync.Mutex
	jobs         map[string]models.Job
	findAllCalls int
	failFindAll  bool
	failSave     bool
	notified     []string
	alertMarks   []string
}

func newFakeStore(jobs ...models.Job) *fakeStore {
	s := &fakeStore{jobs: make(map[string]models.Job)}
	for _, j := range jobs {
		s.jobs[j.ID] = j
	}
	return s
}

func (slf *fakeStore) FindAll() ([]models.Job, error) {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	slf.findAllCalls++
	if slf.failFindAll {
		return nil, errors.New("connection refused")
	}
	out := make([]models.Job, 0, len(slf.jobs))
	for _, j := range slf.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (slf *fakeStore) FindByID(id string) (models.Job, error) {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	job, ok := slf.jobs[id]
	if !ok {
		return models.Job{}, errors.New("record not found")
	}
	return job, nil
}

func (slf *fakeStore) Insert(job *models.Job) error {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	if slf.failSave {
		return errors.New("insert failed")
	}
	slf.jobs[job.ID] = *job
	return nil
}

func (slf *fakeStore) Save(job *models.Job) error {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	if slf.failSave {
		return errors.New("save failed")
	}
	slf.jobs[job.ID] = *job
	return nil
}

func (slf *fakeStore) MarkNotified(id string) error {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	job, ok := slf.jobs[id]
	if !ok {
		return errors.New("record not found")
	}
	job.NotificationSent = true
	slf.jobs[id] = job
	slf.notified = append(slf.notified, id)
	return nil
}

func (slf *fakeStore) MarkAlertShown(id string) error {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	job, ok := slf.jobs[id]
	if !ok {
		return errors.New("record not found")
	}
	job.AlertShown = true
	slf.jobs[id] = job
	slf.alertMarks = append(slf.alertMarks, id)
	return nil
}

func (slf *fakeStore) calls() int {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	return slf.findAllCalls
}

// fakeCache is an in-memory JobCache mirror.
type fakeCache struct {
	mu     sync.Mutex
	jobs   []models.Job
	seeded bool
	writes int
}

func (slf *fakeCache) ReadJobs() ([]models.Job, bool) {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	if !slf.seeded {
		return nil, false
	}
	return slf.jobs, true
}

func (slf *fakeCache) WriteJobs(jobs []models.Job) {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	slf.jobs = jobs
	slf.seeded = true
	slf.writes++
}

// fakeBus records publishes and hands out countable unsubscribes.
type fakeBus struct {
	mu         sync.Mutex
	publishes  int
	changedFns []func()
	unsubCalls int
}

func (slf *fakeBus) PublishJobsChanged() {
	slf.mu.Lock()
	fns := append([]func(){}, slf.changedFns...)
	slf.publishes++
	slf.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (slf *fakeBus) SubscribeJobsChanged(fn func()) (func() error, error) {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	slf.changedFns = append(slf.changedFns, fn)
	return slf.unsubscribe, nil
}

func (slf *fakeBus) SubscribeRowChanges(fn func(op string, job models.Job)) (func() error, error) {
	return slf.unsubscribe, nil
}

func (slf *fakeBus) unsubscribe() error {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	slf.unsubCalls++
	return nil
}

func (slf *fakeBus) published() int {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	return slf.publishes
}

// fakeGateway records every delivery request.
type fakeGateway struct {
	mu         sync.Mutex
	notified   []notifiedCall
	broadcasts []notify.Notification
}

type notifiedCall struct {
	UserID string
	N      notify.Notification
}

func (slf *fakeGateway) Notify(userID string, n notify.Notification) {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	slf.notified = append(slf.notified, notifiedCall{UserID: userID, N: n})
}

func (slf *fakeGateway) Broadcast(n notify.Notification) {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	slf.broadcasts = append(slf.broadcasts, n)
}

func (slf *fakeGateway) count() int {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	return len(slf.notified)
}

// fakeState is an in-memory SyncedJobs for mutation tests.
type fakeState struct {
	mu   sync.Mutex
	jobs map[string]models.Job
}

func newFakeState(jobs ...models.Job) *fakeState {
	s := &fakeState{jobs: make(map[string]models.Job)}
	for _, j := range jobs {
		s.jobs[j.ID] = j
	}
	return s
}

func (slf *fakeState) Get(id string) (models.Job, bool) {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	job, ok := slf.jobs[id]
	return job, ok
}

func (slf *fakeState) ApplyLocal(job models.Job) {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	slf.jobs[job.ID] = job
}

// fakeSource feeds the monitor a scripted job set.
type fakeSource struct {
	mu   sync.Mutex
	jobs []models.Job
}

func (slf *fakeSource) Load() []models.Job {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	out := make([]models.Job, len(slf.jobs))
	copy(out, slf.jobs)
	return out
}

func (slf *fakeSource) set(jobs ...models.Job) {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	slf.jobs = jobs
}
