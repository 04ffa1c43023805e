// Package inmemdb provides map-backed repositories for tests.
package inmemdb

import (
	"sync"

	"github.com/markazhub/markaz/core/academic"
	"github.com/markazhub/markaz/core/scoring"
	"github.com/markazhub/markaz/core/student"
	"github.com/markazhub/markaz/core/user"
)

type DB struct {
	user     *userTable
	student  *studentTable
	academic *academicTables
	scoring  *scoringTable
}

func NewDB() *DB {
	return &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		student: &studentTable{table: make(map[string]*student.Student)},
		academic: &academicTables{
			branches:           make(map[string]*academic.Branch),
			branchYears:        make(map[string]*academic.BranchYear),
			classes:            make(map[string]*academic.Class),
			attendanceSessions: make(map[string]*academic.AttendanceSession),
			attendanceRecords:  make(map[string]*academic.AttendanceRecord),
		},
		scoring: &scoringTable{table: make(map[string]*scoring.Session)},
	}
}

type userTable struct {
	mutex sync.RWMutex
	table map[string]*user.User
}

type studentTable struct {
	mutex sync.RWMutex
	table map[string]*student.Student
}

type academicTables struct {
	mutex              sync.RWMutex
	branches           map[string]*academic.Branch
	branchYears        map[string]*academic.BranchYear
	classes            map[string]*academic.Class
	attendanceSessions map[string]*academic.AttendanceSession
	attendanceRecords  map[string]*academic.AttendanceRecord // keyed session_id + "/" + student_id
}

type scoringTable struct {
	mutex sync.RWMutex
	table map[string]*scoring.Session
}
