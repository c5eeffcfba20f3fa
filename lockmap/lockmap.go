// Package lockmap is a lock table keyed by block number.
//
// The API behaves as if there were one mutex per possible uint64
// address: Acquire(a) takes the lock for a and Release(a) drops it. The
// implementation keeps a fixed set of shards, each tracking only the
// addresses currently held or waited on, so the table stays small no
// matter how many addresses are ever locked.
package lockmap

import "sync"

type lockState struct {
	held    bool
	waiters uint64
	cond    *sync.Cond
}

type shard struct {
	mu    sync.Mutex
	state map[uint64]*lockState
}

func (s *shard) acquire(a uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		st, ok := s.state[a]
		if !ok {
			st = &lockState{cond: sync.NewCond(&s.mu)}
			s.state[a] = st
		}
		if !st.held {
			st.held = true
			return
		}
		st.waiters++
		st.cond.Wait()
		st.waiters--
	}
}

func (s *shard) release(a uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state[a]
	st.held = false
	if st.waiters > 0 {
		st.cond.Signal()
	} else {
		delete(s.state, a)
	}
}

const nShard uint64 = 29

type LockMap struct {
	shards [nShard]*shard
}

func MkLockMap() *LockMap {
	lm := &LockMap{}
	for i := range lm.shards {
		lm.shards[i] = &shard{state: make(map[uint64]*lockState)}
	}
	return lm
}

func (lm *LockMap) Acquire(a uint64) {
	lm.shards[a%nShard].acquire(a)
}

func (lm *LockMap) Release(a uint64) {
	lm.shards[a%nShard].release(a)
}
