// Package console implements the interactive student menu.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/saltyorg/studentdb/internal/database"
)

// Store is the subset of the student repository used by the menu
type Store interface {
	Create(s *database.Student) error
	List() ([]*database.Student, error)
	Update(s *database.Student) error
	Delete(id int64) error
	Close()
}

const menu = `
************ Student CRUD Operations ************
1. Add Student
2. View All Students
3. Update Student
4. Delete Student
5. Exit
`

// Loop is a blocking read-evaluate-print loop over the student menu
type Loop struct {
	store Store
	in    *bufio.Scanner
	out   io.Writer
}

// New creates a menu loop reading from in and writing to out
func New(store Store, in io.Reader, out io.Writer) *Loop {
	return &Loop{
		store: store,
		in:    bufio.NewScanner(in),
		out:   out,
	}
}

// Run shows the menu until the user exits or input ends. The store is
// closed before Run returns.
func (l *Loop) Run() error {
	for {
		fmt.Fprint(l.out, menu)
		choice, err := l.readLine("Enter your choice: ")
		if err != nil {
			return l.stop(err)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = l.addStudent()
		case "2":
			l.viewAllStudents()
		case "3":
			err = l.updateStudent()
		case "4":
			err = l.deleteStudent()
		case "5":
			fmt.Fprintln(l.out, "Exiting...")
			l.store.Close()
			return nil
		default:
			fmt.Fprintln(l.out, "Invalid choice. Please try again.")
		}

		if err != nil {
			return l.stop(err)
		}
	}
}

// stop closes the store; end of input counts as a normal exit
func (l *Loop) stop(err error) error {
	l.store.Close()
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(l.out)
		log.Debug().Msg("Input closed, exiting")
		return nil
	}
	return fmt.Errorf("failed to read input: %w", err)
}

func (l *Loop) addStudent() error {
	s, err := l.readStudent("Enter Student ID: ", "Enter Name: ", "Enter Department: ", "Enter Marks: ")
	if err != nil {
		return err
	}

	if err := l.store.Create(s); err != nil {
		fmt.Fprintf(l.out, "Failed to add student: %s.\n", database.Reason(err))
		return nil
	}
	fmt.Fprintln(l.out, "Student added successfully.")
	return nil
}

func (l *Loop) viewAllStudents() {
	students, err := l.store.List()
	if err != nil {
		fmt.Fprintf(l.out, "Failed to list students: %s.\n", database.Reason(err))
		return
	}
	if len(students) == 0 {
		fmt.Fprintln(l.out, "No students found.")
		return
	}

	fmt.Fprintln(l.out, "\nStudent ID | Name | Department | Marks")
	for _, s := range students {
		fmt.Fprintln(l.out, s)
	}
}

func (l *Loop) updateStudent() error {
	s, err := l.readStudent("Enter Student ID to update: ", "Enter New Name: ", "Enter New Department: ", "Enter New Marks: ")
	if err != nil {
		return err
	}

	if err := l.store.Update(s); err != nil {
		fmt.Fprintf(l.out, "Failed to update student: %s.\n", database.Reason(err))
		return nil
	}
	fmt.Fprintln(l.out, "Student updated successfully.")
	return nil
}

func (l *Loop) deleteStudent() error {
	id, err := l.readInt("Enter Student ID to delete: ")
	if err != nil {
		return err
	}

	if err := l.store.Delete(id); err != nil {
		fmt.Fprintf(l.out, "Failed to delete student: %s.\n", database.Reason(err))
		return nil
	}
	fmt.Fprintln(l.out, "Student deleted successfully.")
	return nil
}

// readStudent prompts for the four student fields in order
func (l *Loop) readStudent(idPrompt, namePrompt, deptPrompt, marksPrompt string) (*database.Student, error) {
	id, err := l.readInt(idPrompt)
	if err != nil {
		return nil, err
	}
	name, err := l.readLine(namePrompt)
	if err != nil {
		return nil, err
	}
	dept, err := l.readLine(deptPrompt)
	if err != nil {
		return nil, err
	}
	marks, err := l.readFloat(marksPrompt)
	if err != nil {
		return nil, err
	}

	return &database.Student{
		ID:         id,
		Name:       name,
		Department: dept,
		Marks:      marks,
	}, nil
}
