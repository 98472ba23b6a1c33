// Package store holds the in-process job and result registries.
//
// 파이프라인 goroutine이 유일한 writer이고 나머지는 읽기 전용 조회만 하므로
// key 단위 동기화만 필요하다. 멀티 프로세스 배포 시 이 인터페이스 뒤를
// 외부 저장소로 교체한다.
package store

import (
	"errors"

	"github.com/loglens/backend/internal/model"
)

var (
	ErrJobNotFound    = errors.New("unknown job_id")
	ErrResultNotReady = errors.New("result not ready")
)

type JobStore interface {
	Create(job model.Job)
	Get(id string) (model.Job, error)
	// Update - 레코드를 mutator로 원자적으로 수정. 읽는 쪽은 절대
	// 절반만 갱신된 레코드를 보지 않는다.
	Update(id string, fn func(*model.Job)) error
}

type ResultStore interface {
	Put(id string, report model.IncidentReport)
	Get(id string) (model.IncidentReport, bool)
}
