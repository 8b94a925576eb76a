package worm

/**
* Worm is a golang library for estimating the outcome of multi-day cricket
* matches. It learns empirical distributions of wicket partnership duration
* and runs from historical match records, then Monte Carlo simulates the
* unfinished part of a match to win/draw/loss probabilities.
 */
