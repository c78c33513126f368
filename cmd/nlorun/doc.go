/*

Executable provides examples of nlo use and an exerciser for its exported
functions.

SUMMARY

This executable demonstrates how the nlo package can be used to build a
Model either directly from a dense linear system or from an NlpProvider
yielding nonlinear expression trees, write it out as an NL file, run an
external AMPL-compatible solver against it, and read back the result.

The options available from the main menu are:

    0 - exit program
    1 - solve a small linear minimization problem
    2 - solve a problem with an equality constraint
    3 - solve a mixed continuous/integer nonlinear problem
    4 - attempt to solve a deliberately infeasible problem
    5 - attempt to solve a deliberately unbounded problem
    6 - attempt to solve using a nonexistent solver executable
    7 - display the last solution obtained

Every option that invokes a solver requires a real AMPL-compatible solver
executable on PATH (see solverCmd in main.go); the scenarios are otherwise
self-contained.

*/
package main
