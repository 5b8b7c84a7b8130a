// Copyright 2024 The Lattice Authors
// This file is part of Lattice.
//
// Lattice is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lattice is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Lattice. If not, see <http://www.gnu.org/licenses/>.

package engine_test

import (
	reflect "reflect"
	time "time"

	gomock "go.uber.org/mock/gomock"
)

// MockMetrics is a hand-maintained gomock double for engine.Metrics, kept in
// the mockgen-generated shape so it can be regenerated with `mockgen` later
// if the interface grows.
type MockMetrics struct {
	ctrl     *gomock.Controller
	recorder *MockMetricsMockRecorder
}

type MockMetricsMockRecorder struct {
	mock *MockMetrics
}

func NewMockMetrics(ctrl *gomock.Controller) *MockMetrics {
	mock := &MockMetrics{ctrl: ctrl}
	mock.recorder = &MockMetricsMockRecorder{mock: mock}
	return mock
}

func (m *MockMetrics) EXPECT() *MockMetricsMockRecorder {
	return m.recorder
}

func (m *MockMetrics) ObservePull(head string, ok bool, d time.Duration) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "ObservePull", head, ok, d)
}

func (mr *MockMetricsMockRecorder) ObservePull(head, ok, d interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ObservePull", reflect.TypeOf((*MockMetrics)(nil).ObservePull), head, ok, d)
}

func (m *MockMetrics) ObserveComputor(head string, d time.Duration) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "ObserveComputor", head, d)
}

func (mr *MockMetricsMockRecorder) ObserveComputor(head, d interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ObserveComputor", reflect.TypeOf((*MockMetrics)(nil).ObserveComputor), head, d)
}

func (m *MockMetrics) ObserveSet(head string, unchanged bool, d time.Duration) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "ObserveSet", head, unchanged, d)
}

func (mr *MockMetricsMockRecorder) ObserveSet(head, unchanged, d interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ObserveSet", reflect.TypeOf((*MockMetrics)(nil).ObserveSet), head, unchanged, d)
}

func (m *MockMetrics) ObserveInvalidate(head string, d time.Duration) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "ObserveInvalidate", head, d)
}

func (mr *MockMetricsMockRecorder) ObserveInvalidate(head, d interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ObserveInvalidate", reflect.TypeOf((*MockMetrics)(nil).ObserveInvalidate), head, d)
}

func (m *MockMetrics) ObserveCascade(nodes int) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "ObserveCascade", nodes)
}

func (mr *MockMetricsMockRecorder) ObserveCascade(nodes interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ObserveCascade", reflect.TypeOf((*MockMetrics)(nil).ObserveCascade), nodes)
}
