package hierarchy

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/poem-comments/internal/models"
)

// idComparer — models.ID сравниваем только через Equal.
var idComparer = cmp.Comparer(func(a, b models.ID) bool { return a.Equal(b) })

var base = time.Date(2025, 8, 7, 12, 0, 0, 0, time.UTC)

// mk — комментарий с корректными level/path относительно parent.
func mk(parent *models.Comment, offset time.Duration) models.Comment {
	level, path := ComputeLevelAndPath(parent)
	c := models.Comment{
		ID:         models.NewID(),
		TargetID:   "t1",
		TargetType: models.TargetGuwen,
		Content:    "c",
		Level:      level,
		Path:       path,
		CreatedAt:  base.Add(offset),
	}
	if parent != nil {
		c.ParentID = parent.ID
	}
	return c
}

func TestComputeLevelAndPath_Root(t *testing.T) {
	level, path := ComputeLevelAndPath(nil)
	require.EqualValues(t, 1, level)
	require.NotNil(t, path)
	require.Empty(t, path)
}

// Сценарий A -> B -> C: уровни 1/2/3, пути [], [A], [A,B].
func TestComputeLevelAndPath_Chain(t *testing.T) {
	a := mk(nil, 0)
	b := mk(&a, time.Second)
	c := mk(&b, 2*time.Second)

	require.EqualValues(t, 1, a.Level)
	require.EqualValues(t, 2, b.Level)
	require.EqualValues(t, 3, c.Level)

	require.Empty(t, a.Path)
	require.True(t, cmp.Equal([]models.ID{a.ID}, b.Path, idComparer))
	require.True(t, cmp.Equal([]models.ID{a.ID, b.ID}, c.Path, idComparer))
}

// Путь ребёнка не должен разделять память с путём родителя.
func TestComputeLevelAndPath_DoesNotAliasParentPath(t *testing.T) {
	a := mk(nil, 0)
	b := mk(&a, time.Second)
	b.Path = append(make([]models.ID, 0, 8), b.Path...)

	_, p1 := ComputeLevelAndPath(&b)
	_, p2 := ComputeLevelAndPath(&b)
	p1[0] = models.NewID()

	require.True(t, p2[0].Equal(a.ID))
	require.True(t, b.Path[0].Equal(a.ID))
}

func TestBuildTree_NestsByDirectParent(t *testing.T) {
	a := mk(nil, 0)
	b := mk(&a, time.Second)
	c := mk(&b, 2*time.Second)
	d := mk(&a, 3*time.Second)

	tree, orphans := BuildTree([]models.Comment{a}, []models.Comment{c, d, b})
	require.Empty(t, orphans)

	want := []models.CommentNode{
		{Comment: a, Children: []models.CommentNode{
			{Comment: b, Children: []models.CommentNode{
				{Comment: c, Children: []models.CommentNode{}},
			}},
			{Comment: d, Children: []models.CommentNode{}},
		}},
	}

	if diff := cmp.Diff(want, tree, idComparer); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

// Одинаковый набор в разном порядке -> одинаковое дерево.
func TestBuildTree_DeterministicUnderShuffle(t *testing.T) {
	a := mk(nil, 0)
	var desc []models.Comment
	parents := []models.Comment{a}
	for i := 0; i < 30; i++ {
		p := parents[i%len(parents)]
		// часть ответов с одинаковым createdAt — проверяем тай-брейк по id.
		c := mk(&p, time.Duration(i/3)*time.Second)
		desc = append(desc, c)
		parents = append(parents, c)
	}

	first, _ := BuildTree([]models.Comment{a}, desc)

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([]models.Comment(nil), desc...)
		rnd.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, orphans := BuildTree([]models.Comment{a}, shuffled)
		require.Empty(t, orphans)
		require.Equal(t, flatten(first), flatten(got), "shuffle %d changed the tree", i)
	}

	require.Len(t, flatten(first), 31)
}

// visit — узел дерева в прямом обходе: id, родитель и глубина вложенности.
type visit struct {
	ID     string
	Parent string
	Depth  int
}

// flatten разворачивает дерево в прямой обход; порядок детей сохраняется.
func flatten(nodes []models.CommentNode) []visit {
	var out []visit

	var walk func(nodes []models.CommentNode, depth int)
	walk = func(nodes []models.CommentNode, depth int) {
		for _, n := range nodes {
			out = append(out, visit{ID: n.ID.String(), Parent: n.ParentID.String(), Depth: depth})
			walk(n.Children, depth+1)
		}
	}
	walk(nodes, 1)

	return out
}

func TestBuildTree_PreservesTopLevelOrder(t *testing.T) {
	a := mk(nil, 0)
	b := mk(nil, time.Second)
	c := mk(nil, 2*time.Second)

	tree, _ := BuildTree([]models.Comment{c, a, b}, nil)
	require.Len(t, tree, 3)
	require.True(t, tree[0].ID.Equal(c.ID))
	require.True(t, tree[1].ID.Equal(a.ID))
	require.True(t, tree[2].ID.Equal(b.ID))
}

// Потомок с отсутствующим родителем (и его собственное поддерево) отбрасывается и возвращается как сирота.
func TestBuildTree_DropsOrphans(t *testing.T) {
	a := mk(nil, 0)
	gone := mk(&a, time.Second)
	orphan := mk(&gone, 2*time.Second)
	orphanChild := mk(&orphan, 3*time.Second)
	ok := mk(&a, 4*time.Second)

	tree, orphans := BuildTree([]models.Comment{a}, []models.Comment{orphanChild, ok, orphan})
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	require.True(t, tree[0].Children[0].ID.Equal(ok.ID))

	require.Len(t, orphans, 2)
	ids := map[models.ID]models.ID{}
	for _, o := range orphans {
		ids[o.Comment.ID] = o.MissingParent
	}
	require.True(t, ids[orphan.ID].Equal(gone.ID))
	require.True(t, ids[orphanChild.ID].Equal(orphan.ID))
}

func TestBuildTree_CollapsesDuplicates(t *testing.T) {
	a := mk(nil, 0)
	b := mk(&a, time.Second)

	tree, orphans := BuildTree([]models.Comment{a, a}, []models.Comment{b, b, a})
	require.Empty(t, orphans)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
}

func TestComparator_TieBreakByID(t *testing.T) {
	a := mk(nil, 0)
	b := mk(nil, 0)
	items := []models.Comment{a, b}

	SortComments(items, models.SortByCreatedAt, models.SortAsc)
	require.Equal(t, -1, items[0].ID.Compare(items[1].ID))

	SortComments(items, models.SortByCreatedAt, models.SortDesc)
	require.Equal(t, 1, items[0].ID.Compare(items[1].ID))
}

func TestComparator_LikeCount(t *testing.T) {
	a := mk(nil, 0)
	a.LikeCount = 5
	b := mk(nil, time.Second)
	b.LikeCount = 9

	items := []models.Comment{a, b}
	SortComments(items, models.SortByLikeCount, models.SortDesc)
	require.True(t, items[0].ID.Equal(b.ID))
}
