package services

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/camden-git/familytreebackend/family"
	"github.com/camden-git/familytreebackend/realtime"
	"github.com/camden-git/familytreebackend/storage"
	"github.com/camden-git/familytreebackend/tree"
	"github.com/sirupsen/logrus"
)

// ErrInvalidMode rejects an unknown navigation mode.
var ErrInvalidMode = errors.New("invalid navigation mode")

// Broadcaster receives change notifications.
type Broadcaster interface {
	Broadcast(event realtime.Event)
}

// SnapshotQueue receives a full copy of the tree after every mutation.
type SnapshotQueue interface {
	Enqueue(snapshot family.People)
	Discard()
}

// FamilyService serializes every operation on one tree. Mutations are forwarded
// to the autosave queue and announced to websocket clients; reads return copies.
type FamilyService struct {
	mu      sync.Mutex
	engine  *family.Engine
	storage storage.Adapter
	saves   SnapshotQueue
	events  Broadcaster
	log     *logrus.Logger
}

func NewFamilyService(engine *family.Engine, adapter storage.Adapter, saves SnapshotQueue, events Broadcaster, log *logrus.Logger) *FamilyService {
	return &FamilyService{
		engine:  engine,
		storage: adapter,
		saves:   saves,
		events:  events,
		log:     log,
	}
}

// Load replaces the in-memory tree with what storage holds. When storage is
// empty and seed is set, the starter tree is loaded and saved.
func (s *FamilyService) Load(seed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	people, ok, err := s.storage.Load()
	if err != nil {
		return fmt.Errorf("failed to load family tree: %w", err)
	}
	if !ok {
		if !seed {
			s.engine.Store().Replace(family.People{})
			return nil
		}
		people = family.SeedPeople()
		if err := s.storage.Save(people); err != nil {
			return fmt.Errorf("failed to save seed tree: %w", err)
		}
		s.log.WithField("people", len(people)).Info("storage empty, loaded seed tree")
	}
	s.engine.Store().Replace(people)
	s.log.WithField("people", len(people)).Info("family tree loaded")
	return nil
}

// changed must be called with mu held.
func (s *FamilyService) changed(event realtime.Event) {
	if s.saves != nil {
		s.saves.Enqueue(s.engine.Store().Snapshot())
	}
	if s.events != nil {
		s.events.Broadcast(event)
	}
	s.log.WithFields(logrus.Fields{
		"event":     event.Type,
		"person_id": event.PersonID,
	}).Debug("family tree changed")
}

func (s *FamilyService) getLocked(id family.ID) (*family.Person, error) {
	p, ok := s.engine.Store().Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", family.ErrNotFound, id)
	}
	return p.Clone(), nil
}

func ids(in ...family.ID) []string {
	out := make([]string, 0, len(in))
	for _, id := range in {
		if id != "" {
			out = append(out, string(id))
		}
	}
	return out
}

// People returns a copy of the whole tree.
func (s *FamilyService) People() family.People {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Store().Snapshot()
}

func (s *FamilyService) Get(id family.ID) (*family.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *FamilyService) CreateRoot(f family.Fields) (*family.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.engine.AddRoot(f)
	if err != nil {
		return nil, err
	}
	s.changed(realtime.Event{Type: realtime.PersonCreated, PersonID: string(id)})
	return s.getLocked(id)
}

func (s *FamilyService) AddChild(parentID family.ID, f family.Fields) (*family.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.engine.AddChild(parentID, f)
	if err != nil {
		return nil, err
	}
	child, _ := s.engine.Store().Get(id)
	s.changed(realtime.Event{
		Type:     realtime.PersonCreated,
		PersonID: string(id),
		Affected: ids(child.FatherID, child.MotherID),
	})
	return child.Clone(), nil
}

func (s *FamilyService) AddParent(childID family.ID, f family.Fields) (*family.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.engine.AddParent(childID, f)
	if err != nil {
		return nil, err
	}
	s.changed(realtime.Event{Type: realtime.PersonCreated, PersonID: string(id), Affected: ids(childID)})
	return s.getLocked(id)
}

func (s *FamilyService) AddSpouse(personID family.ID, f family.Fields) (*family.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.engine.AddSpouse(personID, f)
	if err != nil {
		return nil, err
	}
	spouse, _ := s.engine.Store().Get(id)
	s.changed(realtime.Event{
		Type:     realtime.PersonCreated,
		PersonID: string(id),
		Affected: ids(append([]family.ID{personID}, spouse.ChildrenIDs...)...),
	})
	return spouse.Clone(), nil
}

func (s *FamilyService) LinkParent(childID, parentID family.ID) (*family.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.LinkParent(childID, parentID); err != nil {
		return nil, err
	}
	s.changed(realtime.Event{Type: realtime.PersonUpdated, PersonID: string(childID), Affected: ids(parentID)})
	return s.getLocked(childID)
}

func (s *FamilyService) LinkSpouse(aID, bID family.ID) (*family.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.LinkSpouse(aID, bID); err != nil {
		return nil, err
	}
	s.changed(realtime.Event{Type: realtime.PersonUpdated, PersonID: string(aID), Affected: ids(bID)})
	return s.getLocked(aID)
}

func (s *FamilyService) UnlinkSpouse(personID family.ID) (*family.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.getLocked(personID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.UnlinkSpouse(personID); err != nil {
		return nil, err
	}
	s.changed(realtime.Event{Type: realtime.PersonUpdated, PersonID: string(personID), Affected: ids(before.SpouseID)})
	return s.getLocked(personID)
}

func (s *FamilyService) Edit(personID family.ID, f family.Fields) (*family.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.Edit(personID, f); err != nil {
		return nil, err
	}
	p, _ := s.engine.Store().Get(personID)
	s.changed(realtime.Event{Type: realtime.PersonUpdated, PersonID: string(personID), Affected: ids(p.ChildrenIDs...)})
	return p.Clone(), nil
}

// DeleteResult tells the caller where to navigate after a deletion.
type DeleteResult struct {
	Deleted       bool      `json:"deleted"`
	WasFamilyRoot bool      `json:"wasFamilyRoot"`
	NextRootID    family.ID `json:"nextRootId,omitempty"` // largest remaining family, when the deleted person headed one
}

// Delete is idempotent: deleting an unknown id reports Deleted false.
func (s *FamilyService) Delete(personID family.ID) DeleteResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.engine.Store()
	p, ok := store.Get(personID)
	if !ok {
		return DeleteResult{}
	}
	wasRoot := p.IsFamilyRoot()
	affected := ids(append([]family.ID{p.FatherID, p.MotherID, p.SpouseID}, p.ChildrenIDs...)...)

	s.engine.Delete(personID)

	result := DeleteResult{Deleted: true, WasFamilyRoot: wasRoot}
	if wasRoot {
		if heads := store.RootFamilies(); len(heads) > 0 {
			result.NextRootID = heads[0].Person.ID
		}
	}
	s.changed(realtime.Event{Type: realtime.PersonDeleted, PersonID: string(personID), Affected: affected})
	return result
}

// MakeFamilyRoot returns how many people are now in the new family.
func (s *FamilyService) MakeFamilyRoot(personID family.ID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.MakeFamilyRoot(personID); err != nil {
		return 0, err
	}
	members := s.familySizeLocked(personID)
	s.changed(realtime.Event{Type: realtime.FamilyChanged, PersonID: string(personID), Count: members})
	return members, nil
}

func (s *FamilyService) RemoveFamilyRoot(personID family.ID) (*family.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.RemoveFamilyRoot(personID); err != nil {
		return nil, err
	}
	p, _ := s.engine.Store().Get(personID)
	s.changed(realtime.Event{Type: realtime.FamilyChanged, PersonID: string(personID), Count: s.familySizeLocked(p.FamilyID)})
	return p.Clone(), nil
}

func (s *FamilyService) familySizeLocked(familyID family.ID) int {
	if familyID == "" {
		return 0
	}
	n := 0
	store := s.engine.Store()
	for _, id := range store.IDs() {
		if p, _ := store.Get(id); p.FamilyID == familyID {
			n++
		}
	}
	return n
}

func (s *FamilyService) DescendantCount(id family.ID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.engine.Store().Has(id) {
		return 0, fmt.Errorf("%w: %q", family.ErrNotFound, id)
	}
	return s.engine.Store().DescendantCount(id), nil
}

func (s *FamilyService) PathToTarget(rootID, targetID family.ID) []family.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Store().PathToTarget(rootID, targetID)
}

func (s *FamilyService) FamilyLabel(id family.ID) (family.Label, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Store().FamilyLabel(id)
}

func (s *FamilyService) RootFamilies() []family.FamilyHead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Store().RootFamilies()
}

func (s *FamilyService) Search(query string, limit int) []*family.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Store().Search(query, limit)
}

// Navigation modes.
const (
	NavigateFamily    = "family"
	NavigateAncestors = "ancestors"
)

// Navigation names the tree to render to show a person and the person to
// expand the path to.
type Navigation struct {
	Root   family.ID `json:"root"`
	Target family.ID `json:"target"`
}

// Navigate picks the tree that shows id. NavigateFamily roots it at the head of
// id's family group, NavigateAncestors at the highest ancestor reachable
// through fathers, then mothers.
func (s *FamilyService) Navigate(id family.ID, mode string) (Navigation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.engine.Store()
	var (
		root family.ID
		ok   bool
	)
	switch mode {
	case "", NavigateFamily:
		root, ok = store.TreeRootFor(id)
	case NavigateAncestors:
		root, ok = store.HighestAncestor(id)
	default:
		return Navigation{}, fmt.Errorf("%w: unknown navigation mode %q", ErrInvalidMode, mode)
	}
	if !ok {
		return Navigation{}, fmt.Errorf("%w: %q", family.ErrNotFound, id)
	}
	return Navigation{Root: root, Target: id}, nil
}

// Tree builds the visible tree. An empty rootID falls back to the largest family.
func (s *FamilyService) Tree(rootID family.ID, expanded tree.Expansion, targetID family.ID) (*tree.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.engine.Store()
	if rootID == "" {
		heads := store.RootFamilies()
		if len(heads) == 0 {
			return nil, fmt.Errorf("%w: tree is empty", family.ErrNotFound)
		}
		rootID = heads[0].Person.ID
	}
	node := tree.Build(store, rootID, expanded, targetID)
	if node == nil {
		return nil, fmt.Errorf("%w: %q", family.ErrNotFound, rootID)
	}
	return node, nil
}

// Export writes the current tree in the interchange format.
func (s *FamilyService) Export(w io.Writer) error {
	return storage.Export(w, s.People())
}

// Import replaces the whole tree with the document read from r.
func (s *FamilyService) Import(r io.Reader) (int, error) {
	people, err := storage.Import(r)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Store().Replace(people)
	s.changed(realtime.Event{Type: realtime.TreeReplaced, Count: len(people)})
	s.log.WithField("people", len(people)).Info("family tree imported")
	return len(people), nil
}

// Clear removes the saved tree and empties the in-memory one.
func (s *FamilyService) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saves != nil {
		s.saves.Discard()
	}
	if err := s.storage.Clear(); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	s.engine.Store().Replace(family.People{})
	if s.events != nil {
		s.events.Broadcast(realtime.Event{Type: realtime.TreeCleared})
	}
	s.log.Info("family tree cleared")
	return nil
}
