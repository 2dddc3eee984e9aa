// Package youtube implements the generation.VideoSearcher interface on
// top of the YouTube Data API. It selects the single top embeddable video
// for a query and handles key quota rotation, treating a clean empty
// result as a normal outcome rather than an error.
package youtube
