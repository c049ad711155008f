package types

// BundleBuilder accumulates posts and comments for one (community, query)
// pair. Nothing is visible outside the builder until Build is called.
type BundleBuilder struct {
	b Bundle
}

// NewBundleBuilder returns an empty builder.
func NewBundleBuilder() *BundleBuilder {
	return &BundleBuilder{}
}

// AddPost appends a post. The author is stored as given; callers normalize
// it with NormalizeAuthor at ingestion.
func (bb *BundleBuilder) AddPost(p Post) {
	bb.b.PostID = append(bb.b.PostID, p.PostID)
	bb.b.Title = append(bb.b.Title, p.Title)
	bb.b.Author = append(bb.b.Author, p.Author)
	bb.b.AuthorFlair = append(bb.b.AuthorFlair, p.AuthorFlair)
	bb.b.Score = append(bb.b.Score, p.Score)
	bb.b.UpvoteRatio = append(bb.b.UpvoteRatio, p.UpvoteRatio)
	bb.b.PostDate = append(bb.b.PostDate, p.PostDate)
}

// AddComment appends a comment.
func (bb *BundleBuilder) AddComment(c Comment) {
	cc := &bb.b.Comments
	cc.PostID = append(cc.PostID, c.PostID)
	cc.CommentID = append(cc.CommentID, c.CommentID)
	cc.CommentContent = append(cc.CommentContent, c.CommentContent)
	cc.CommentAuthor = append(cc.CommentAuthor, c.CommentAuthor)
	cc.CommentScore = append(cc.CommentScore, c.CommentScore)
	cc.CommentDate = append(cc.CommentDate, c.CommentDate)
}

// Posts returns the number of posts added so far.
func (bb *BundleBuilder) Posts() int { return bb.b.Len() }

// Comments returns the number of comments added so far.
func (bb *BundleBuilder) Comments() int { return bb.b.CommentLen() }

// Build validates and returns an independent copy of the accumulated bundle.
// Empty bundles have non-nil, zero-length slices.
func (bb *BundleBuilder) Build() (Bundle, error) {
	if err := bb.b.Validate(); err != nil {
		return Bundle{}, err
	}
	return bb.b.Clone(), nil
}
