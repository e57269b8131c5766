// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mockdata

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	pkgerrors "week-planner/pkg/errors"
)

//go:embed data/*
var embedded embed.FS

// 数据文件名
const (
	FileEmployee         = "employee_data.json"
	FileCalendar         = "gcal.json"
	FileCompetencyMatrix = "competency_matrix.json"
	FilePullRequests     = "pull_requests.json"
	FileTechSpec         = "tech_spec.md"
	FileGoals            = "goals.md"
	FileUpdates          = "updates.md"
)

// Source 静态数据读取接口；每次调用都重新读取，不做缓存
type Source interface {
	Employee(ctx context.Context) (*Employee, error)
	Calendar(ctx context.Context) (*Calendar, error)
	CompetencyMatrix(ctx context.Context) (*CompetencyMatrix, error)
	PullRequests(ctx context.Context) (*PullRequestList, error)
	Document(ctx context.Context, name string) (string, error)
}

// Store 基于 fs.FS 的 Source 实现
type Store struct {
	fsys fs.FS
}

// NewStore 基于任意 fs.FS 创建（测试可传 fstest.MapFS）
func NewStore(fsys fs.FS) *Store {
	return &Store{fsys: fsys}
}

// NewEmbedded 使用内置数据
func NewEmbedded() *Store {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return &Store{fsys: sub}
}

// Open dir 为空时使用内置数据，否则读取目录
func Open(dir string) (*Store, error) {
	if dir == "" {
		return NewEmbedded(), nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "mock data dir %s", dir)
	}
	if !info.IsDir() {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrInvalidArg, "mock data path %s is not a directory", dir)
	}
	return &Store{fsys: os.DirFS(dir)}, nil
}

func (s *Store) read(name string) ([]byte, error) {
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, pkgerrors.Wrapf(pkgerrors.ErrNotFound, "mock record %s", name)
		}
		return nil, pkgerrors.Wrapf(err, "read mock record %s", name)
	}
	return data, nil
}

func readJSON[T any](s *Store, name string) (*T, error) {
	data, err := s.read(name)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, pkgerrors.Wrapf(err, "decode mock record %s", name)
	}
	return &v, nil
}

// Employee 实现 Source
func (s *Store) Employee(ctx context.Context) (*Employee, error) {
	return readJSON[Employee](s, FileEmployee)
}

// Calendar 实现 Source
func (s *Store) Calendar(ctx context.Context) (*Calendar, error) {
	return readJSON[Calendar](s, FileCalendar)
}

// CompetencyMatrix 实现 Source
func (s *Store) CompetencyMatrix(ctx context.Context) (*CompetencyMatrix, error) {
	return readJSON[CompetencyMatrix](s, FileCompetencyMatrix)
}

// PullRequests 实现 Source
func (s *Store) PullRequests(ctx context.Context) (*PullRequestList, error) {
	return readJSON[PullRequestList](s, FilePullRequests)
}

// Document 读取 Markdown 文档（tech_spec.md / goals.md / updates.md）
func (s *Store) Document(ctx context.Context, name string) (string, error) {
	data, err := s.read(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
